package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/PaulSz7/crossword-generator/internal/gen"
	"github.com/PaulSz7/crossword-generator/internal/store"
	"github.com/PaulSz7/crossword-generator/internal/theme"
)

func (app *application) handleGenerate(w http.ResponseWriter, r *http.Request) {
	params, err := decodeGenerateParams(r.URL.Query())
	if err != nil {
		replyWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg, err := params.toConfig()
	if err != nil {
		replyWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.WithFields(logrus.Fields{
		"height": cfg.Height, "width": cfg.Width,
		"difficulty": cfg.Difficulty, "seed": cfg.Seed,
	}).Info("generation request")

	opts := app.themeOptions(params)
	generator, err := gen.New(cfg, app.dict, opts...)
	if err != nil {
		replyWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, genErr := generator.Generate(r.Context())
	if params.Save && app.store != nil {
		app.persist(r, cfg, result, genErr)
	}
	if genErr != nil {
		var ge *gen.Error
		if errors.As(genErr, &ge) && ge.Kind == gen.KindInvalidConfig {
			replyWithError(w, http.StatusBadRequest, ge.Error())
			return
		}
		replyWithError(w, http.StatusUnprocessableEntity, genErr.Error())
		return
	}
	replyWithJSON(w, result)
}

func (app *application) themeOptions(params GenerateParams) []gen.Option {
	if words := params.userWords(); words != nil {
		return []gen.Option{gen.WithThemeSource(theme.UserSource(words))}
	}
	if params.Theme != "" {
		return []gen.Option{gen.WithThemeSource(theme.NewStatic(params.Seed))}
	}
	return nil
}

func (app *application) persist(r *http.Request, cfg gen.Config, result *gen.Result, genErr error) {
	ctx := r.Context()
	if result != nil {
		if _, err := app.store.SaveResult(ctx, cfg, result); err != nil {
			log.Error("unable to save crossword: ", err)
		}
		return
	}
	var ge *gen.Error
	if !errors.As(genErr, &ge) {
		ge = &gen.Error{Kind: gen.KindGenerationFailed, Detail: genErr.Error()}
	}
	if _, err := app.store.SaveFailure(ctx, cfg, ge); err != nil {
		log.Error("unable to save failure: ", err)
	}
}

func (app *application) handleGetCrossword(w http.ResponseWriter, r *http.Request) {
	if app.store == nil {
		replyWithError(w, http.StatusNotImplemented, "no store configured")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		replyWithError(w, http.StatusBadRequest, "invalid crossword id")
		return
	}
	doc, err := app.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		replyWithError(w, http.StatusNotFound, "crossword not found")
		return
	}
	if err != nil {
		log.Error(err)
		replyWithError(w, http.StatusInternalServerError, "internal error")
		return
	}
	replyWithJSON(w, doc)
}

func (app *application) handleRecent(w http.ResponseWriter, r *http.Request) {
	if app.store == nil {
		replyWithError(w, http.StatusNotImplemented, "no store configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	docs, err := app.store.Recent(r.Context(), limit)
	if err != nil {
		log.Error(err)
		replyWithError(w, http.StatusInternalServerError, "internal error")
		return
	}
	replyWithJSON(w, docs)
}
