package theme

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/PaulSz7/crossword-generator/internal/dict"
)

// Static Romanian theme buckets, tiered by difficulty. They back the
// deterministic fallback source when no LLM is configured.
var defaultBuckets = map[string]map[dict.Difficulty][]string{
	"mitologie": {
		dict.Easy: {
			"APOLON", "ARES", "ATHENA", "HERA", "IRIS", "HERMES", "ODIN",
			"THOR", "DIANA", "EROS", "AURORA", "TITAN", "ATLAS", "PAN",
			"ZEUS", "POSEIDON", "ISIS", "RA",
		},
		dict.Medium: {
			"ANUBIS", "FREIA", "MINERVA", "CERES", "NEMESIS", "HELIOS",
			"SIRENA", "FAUN", "OSIRIS", "DEMETER", "JANUS", "BALDER", "TETHYS",
		},
		dict.Hard: {
			"HESTIA", "SATIR", "EOL", "MORPHEU", "ORACOL", "NEREIDA", "LIBER",
			"CHARON", "ERINIE", "HYPERION", "PROTEU",
		},
	},
	"istorie": {
		dict.Easy: {
			"REGAT", "ARMATA", "REGE", "PATRIA", "SENAT", "FORT", "OPERA",
			"PACT", "COLONIE", "CRONICA", "STEAG", "SCUT", "HARTA", "CRUCE",
		},
		dict.Medium: {
			"LEGIE", "TRON", "VOIEVOD", "ARHIVA", "ARMURA", "CANON",
			"DOMNIE", "TRIBUT", "LEGAT", "TABELA", "DINASTIE", "HERALD",
			"ARMISTITIU", "CRONOGRAF",
		},
		dict.Hard: {
			"CRONIC", "CASTRA", "ARCA", "DICTUM", "RELICVA", "PORTIC",
			"CRONICAR", "EDICT", "SIGILIU", "PAPIRUS", "PALIMPSEST", "TRIREMA",
		},
	},
	"natura": {
		dict.Easy: {
			"MUNTE", "BRAD", "LUP", "CERB", "PLOAIE", "CAMP", "IARBA",
			"PAMANT", "OCEAN", "DELTA", "FRUNZA", "LAC", "NISIP", "VANT", "RAPITA",
		},
		dict.Medium: {
			"CODRU", "IZVOR", "STANCA", "LUNCA", "PODIS", "OGOR", "APUS",
			"CASCADA", "FAG", "AURORA", "DESERT", "GROTA", "PENINSULA", "ECOSISTEM",
		},
		dict.Hard: {
			"RAPID", "VALURI", "ALBIA", "MOLID", "RACHIT", "SIRET",
			"TRESTIE", "PRAFUL", "ARIN", "GORUN", "ESTUAR", "ZADA", "LIMAN",
		},
	},
}

var fallbackBucket = map[dict.Difficulty][]string{
	dict.Easy: {
		"ROMA", "DUNARE", "SOLAR", "VIATA", "LUMEA", "PIATA", "PORT", "CETATE",
	},
	dict.Medium: {
		"CARPA", "RITUAL", "LEGAT", "CLIPA", "CAMPIE", "RAZBOI", "ACORD",
	},
	dict.Hard: {
		"PATRU", "POD", "CLASA", "COLINA",
	},
}

// StaticSource serves theme words from the predefined buckets: on-tier
// words first, then the other tiers, each group shuffled by the seeded
// RNG so equal seeds give equal orders.
type StaticSource struct {
	buckets map[string]map[dict.Difficulty][]string
	seed    uint64
}

func NewStatic(seed uint64) *StaticSource {
	return &StaticSource{buckets: defaultBuckets, seed: seed}
}

func (s *StaticSource) Words(_ context.Context, topic string, limit int, tier dict.Difficulty, _ string) ([]Entry, error) {
	tierMap, ok := s.buckets[strings.ToLower(strings.TrimSpace(topic))]
	if !ok {
		tierMap = fallbackBucket
	}

	rng := rand.New(rand.NewPCG(s.seed, 1))
	onTier := append([]string(nil), tierMap[tier]...)
	var offTier []string
	for _, t := range []dict.Difficulty{dict.Easy, dict.Medium, dict.Hard} {
		if t != tier {
			offTier = append(offTier, tierMap[t]...)
		}
	}
	rng.Shuffle(len(onTier), func(i, j int) { onTier[i], onTier[j] = onTier[j], onTier[i] })
	rng.Shuffle(len(offTier), func(i, j int) { offTier[i], offTier[j] = offTier[j], offTier[i] })

	combined := append(onTier, offTier...)
	if limit > 0 && len(combined) > limit {
		combined = combined[:limit]
	}
	entries := make([]Entry, 0, len(combined))
	for _, word := range combined {
		entries = append(entries, Entry{
			Word:   word,
			Clue:   fmt.Sprintf("Rezerva %s: %s", topicOr(topic), strings.ToLower(word)),
			Source: "dummy",
		})
	}
	Log.WithField("count", len(entries)).Debug("static theme source produced placeholders")
	return entries, nil
}

func topicOr(topic string) string {
	if strings.TrimSpace(topic) == "" {
		return "tema"
	}
	return topic
}
