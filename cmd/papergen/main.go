package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pavelanni/papergen/internal/generator"
	"github.com/pavelanni/papergen/internal/handler"
	appI18n "github.com/pavelanni/papergen/internal/i18n"
	"github.com/pavelanni/papergen/internal/llm"
	"github.com/pavelanni/papergen/internal/model"
	"github.com/pavelanni/papergen/internal/ocr"
	"github.com/pavelanni/papergen/internal/store"
	"github.com/pavelanni/papergen/internal/syllabus"
)

//go:generate templ generate

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "papergen",
		Short: "Exam question paper generator for syllabus text",
	}

	serve := serveCmd()
	root.AddCommand(serve, parseCmd(), generateCmd(), hashKeyCmd(), auditCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `papergen --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addLLMFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("backend", llm.BackendGemini, "Generation backend (gemini, openai, anthropic, mock)")
	f.String("llm-url", "", "Backend base URL override (e.g. http://localhost:11434/v1 for Ollama)")
	f.String("llm-key", "", "API key for the backend (or set GEMINI_API_KEY)")
	f.String("llm-model", "", "Model name (empty = backend default)")
	f.Duration("llm-timeout", 60*time.Second, "Timeout for one backend call")
	f.String("lang", "en", "Placeholder and UI language (en, ta)")
}

func addLogFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP question generation server",
		RunE:  runServe,
	}
	addLLMFlags(cmd)
	f := cmd.Flags()
	f.StringP("addr", "a", ":3000", "HTTP listen address")
	f.StringSlice("cors-origins", []string{"*"}, "Allowed CORS origins (repeatable)")
	f.String("access-key-hash", "", "bcrypt hash of the X-Access-Key required on /api (see hash-key)")
	f.String("audit-db", "", "SQLite path for recording generation calls (empty = off)")
	f.Bool("ocr", false, "Enable /api/extract-syllabus via Google Cloud Vision")
	f.String("gcp-credentials", "", "Service account JSON for Cloud Vision (empty = default credentials)")
	addLogFlags(cmd)
	return cmd
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Split a syllabus text file into unit topics",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	f := cmd.Flags()
	f.String("format", "json", "Output format (json, yaml)")
	f.Int("max-topics", 0, "Keep at most this many topics per unit (0 = all)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a full question paper from a request JSON file",
		RunE:  runGenerate,
	}
	addLLMFlags(cmd)
	f := cmd.Flags()
	f.StringP("request", "r", "", "Request JSON file in the /api/generate-questions format (required)")
	f.String("syllabus", "", "Syllabus text file; fills unitTopics and subjectName when the request omits them")
	f.String("audit-db", "", "SQLite path for recording generation calls (empty = off)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)
	_ = cmd.MarkFlagRequired("request")
	return cmd
}

func hashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key KEY",
		Short: "Print the bcrypt hash of an access key for --access-key-hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := handler.HashAccessKey(args[0])
			if err != nil {
				return fmt.Errorf("hash access key: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Export recorded generation calls as JSON",
		RunE:  runAudit,
	}
	f := cmd.Flags()
	f.String("audit-db", "papergen.db", "SQLite audit database path")
	f.String("request-id", "", "Only calls made for this request ID")
	f.Bool("failed", false, "Only failed calls")
	f.Int("limit", 0, "Maximum number of calls (0 = all)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("PAPERGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("papergen")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/papergen")
	v.AddConfigPath("/etc/papergen")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// llmConfig builds the backend config from flags, falling back to the
// provider's conventional key variable.
func llmConfig(v *viper.Viper) llm.Config {
	cfg := llm.DefaultConfig()
	cfg.Backend = strings.ToLower(strings.TrimSpace(v.GetString("backend")))
	cfg.APIKey = v.GetString("llm-key")
	cfg.Model = v.GetString("llm-model")
	cfg.BaseURL = v.GetString("llm-url")
	cfg.Timeout = v.GetDuration("llm-timeout")

	if cfg.APIKey == "" {
		switch cfg.Backend {
		case llm.BackendGemini:
			cfg.APIKey = os.Getenv("GEMINI_API_KEY")
		case llm.BackendAnthropic:
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case llm.BackendOpenAI:
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	return cfg
}

// newPipeline wires the backend, the optional audit store and localized
// placeholders. The returned closer releases the audit store.
func newPipeline(ctx context.Context, v *viper.Viper) (*generator.Pipeline, llm.Config, func(), error) {
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return nil, llm.Config{}, nil, fmt.Errorf("init i18n: %w", err)
	}

	cfg := llmConfig(v)
	gen, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, llm.Config{}, nil, fmt.Errorf("create generation backend: %w", err)
	}

	closer := func() {}
	if path := v.GetString("audit-db"); path != "" {
		db, err := store.New(path)
		if err != nil {
			return nil, llm.Config{}, nil, fmt.Errorf("open audit database: %w", err)
		}
		if err := db.RecordServerStart(ctx, cfg.Backend, gen.ModelID(), time.Now()); err != nil {
			slog.Warn("failed to record server start", "error", err)
		}
		gen = llm.WithAudit(gen, cfg.Backend, db)
		closer = func() { _ = db.Close() }
		slog.Info("recording generation calls", "path", path)
	}

	return generator.New(gen, appI18n.Placeholders{}, slog.Default()), cfg, closer, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pipeline, llmCfg, closeAudit, err := newPipeline(ctx, v)
	if err != nil {
		return err
	}
	defer closeAudit()

	var extractor ocr.Extractor
	if v.GetBool("ocr") {
		ve, err := ocr.NewVision(ctx, v.GetString("gcp-credentials"))
		if err != nil {
			return fmt.Errorf("create OCR client: %w", err)
		}
		defer ve.Close()
		extractor = ve
	}

	origins := v.GetStringSlice("cors-origins")
	lang := v.GetString("lang")
	srvCfg := model.ServerConfig{
		Backend:       llmCfg.Backend,
		Model:         llmCfg.ResolvedModel(),
		Lang:          lang,
		CORSOrigins:   origins,
		AccessKeyHash: v.GetString("access-key-hash"),
	}

	h, err := handler.New(pipeline, extractor, srvCfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type", handler.AccessKeyHeader},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(handler.RequestID)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"backend", srvCfg.Backend,
		"model", srvCfg.Model,
		"lang", lang,
		"cors_origins", origins,
		"access_key", srvCfg.AccessKeyHash != "",
		"ocr", extractor != nil,
	)
	return http.ListenAndServe(addr, r)
}

func runParse(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read syllabus: %w", err)
	}
	text := string(data)

	out := model.ParseSyllabusResponse{
		SubjectName: syllabus.SubjectName(text),
		UnitTopics:  syllabus.ParseWithOptions(text, syllabus.Options{MaxTopics: v.GetInt("max-topics")}),
	}
	if len(out.UnitTopics) == 0 {
		slog.Warn("no unit headers found", "file", args[0])
	}

	var encoded []byte
	switch strings.ToLower(v.GetString("format")) {
	case "yaml", "yml":
		encoded, err = yaml.Marshal(yamlSyllabus{SubjectName: out.SubjectName, UnitTopics: out.UnitTopics})
	case "json":
		encoded, err = json.MarshalIndent(out, "", "  ")
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", v.GetString("format"))
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return writeOutput(v.GetString("output"), encoded)
}

type yamlSyllabus struct {
	SubjectName string              `yaml:"subjectName"`
	UnitTopics  map[string][]string `yaml:"unitTopics"`
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := os.ReadFile(v.GetString("request"))
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	var req model.GenerateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse request: %w", err)
	}

	if path := v.GetString("syllabus"); path != "" {
		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read syllabus: %w", err)
		}
		if req.UnitTopics == nil {
			req.UnitTopics = syllabus.Parse(string(text))
		}
		if req.SubjectName == "" {
			req.SubjectName = syllabus.SubjectName(string(text))
		}
	}
	if len(req.Sections) == 0 || req.UnitTopics == nil {
		return fmt.Errorf("request needs sections and unitTopics (or --syllabus)")
	}

	pipeline, _, closeAudit, err := newPipeline(ctx, v)
	if err != nil {
		return err
	}
	defer closeAudit()

	paper, err := pipeline.RunPaper(ctx, req)
	if err != nil {
		return fmt.Errorf("generate paper: %w", err)
	}

	encoded, err := json.MarshalIndent(paper, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	return writeOutput(v.GetString("output"), encoded)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := store.New(v.GetString("audit-db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	export, err := db.ExportAudit(ctx, store.CallFilter{
		RequestID:  v.GetString("request-id"),
		FailedOnly: v.GetBool("failed"),
		Limit:      v.GetInt("limit"),
	})
	if err != nil {
		return fmt.Errorf("export audit: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	return writeOutput(v.GetString("output"), data)
}

func writeOutput(outPath string, data []byte) error {
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)
	return nil
}
