package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
	"golang.org/x/sync/errgroup"

	"github.com/PaulSz7/crossword-generator/internal/dict"
	"github.com/PaulSz7/crossword-generator/internal/store"
)

var (
	log = logrus.New()

	addr     string
	dictPath string
	dbURL    string
	logFile  string
	verbose  bool
)

func init() {
	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.StringVar(&dictPath, "dict", "local_db/dex_words.tsv", "dictionary TSV path")
	flag.StringVar(&dbURL, "db", os.Getenv("DATABASE_URL"), "postgres URL (optional)")
	flag.StringVar(&logFile, "log-file", "", "rotating log file (optional)")
	flag.BoolVar(&verbose, "v", false, "debug logging")
}

func setupLogging() {
	level := logrus.InfoLevel
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	if logFile == "" {
		return
	}
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Level:      level,
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		log.Warn("unable to open log file: ", err)
		return
	}
	log.AddHook(hook)
}

func main() {
	mainCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	flag.Parse()
	setupLogging()

	d, err := dict.Load(dict.Config{Path: dictPath})
	if err != nil {
		log.Fatal("unable to load dictionary: ", err)
	}
	log.Infof("dictionary ready, %d entries", d.Size())

	app := &application{dict: d}
	if dbURL != "" {
		st, err := store.Open(mainCtx, dbURL)
		if err != nil {
			log.Fatal("unable to open store: ", err)
		}
		defer st.Close()
		app.store = st
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      app.buildHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // generation can run long
		IdleTimeout:  60 * time.Second,
		BaseContext: func(l net.Listener) context.Context {
			return mainCtx
		},
	}

	log.Infof("ready to serve @ %s", addr)

	g, gCtx := errgroup.WithContext(mainCtx)
	g.Go(func() error {
		return server.ListenAndServe()
	})
	g.Go(func() error {
		<-gCtx.Done()
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Printf("exit reason: %s\n", err)
	}
}
