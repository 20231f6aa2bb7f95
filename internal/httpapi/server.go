package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nlpd/internal/manager"
	"nlpd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Translate(ctx context.Context, source, target, text string) (string, error)
	SentenceEmbeddings(ctx context.Context, text string) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
	Ask(ctx context.Context, question, passage string) (types.Answer, error)
	ZeroShot(ctx context.Context, text string, labels []string) (types.Label, error)
	NER(ctx context.Context, text string) ([]types.Entity, error)
	Warmup(ctx context.Context, t manager.Target) (string, error)
	Models() types.ModelsResponse
	Languages() types.LanguagesResponse
	Status() types.StatusResponse
	Ready() bool
}

// NewMux builds the router for svc.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}

	h := handlers{svc: svc}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/translate", h.translate)
		r.Post("/embeddings", h.embeddings)
		r.Post("/summarize", h.summarize)
		r.Post("/ask", h.ask)
		r.Post("/zero-shot", h.zeroShot)
		r.Post("/ner", h.ner)
	})
	r.Get("/models", h.models)
	r.Get("/languages", h.languages)
	r.Get("/status", h.status)
	r.Post("/warmup", h.warmup)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)
	return r
}

type handlers struct {
	svc Service
}

// translate godoc
//
//	@Summary	Translate text between two languages
//	@Tags		inference
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.TranslateRequest	true	"Text and language pair"
//	@Success	200		{object}	types.TranslateResponse
//	@Failure	400		{object}	types.ErrorResponse	"Unsupported language"
//	@Failure	404		{object}	types.ErrorResponse	"Language pair not served"
//	@Failure	429		{object}	types.ErrorResponse	"Engine queue full"
//	@Failure	503		{object}	types.ErrorResponse	"Engine could not be built"
//	@Router		/v1/translate [post]
func (h handlers) translate(w http.ResponseWriter, r *http.Request) {
	var req types.TranslateRequest
	h.serve(w, r, "translate", &req, func(ctx context.Context) (any, error) {
		text, err := h.svc.Translate(ctx, req.Source, req.Target, req.Text)
		return types.TranslateResponse{Text: text}, err
	})
}

// embeddings godoc
//
//	@Summary	Sentence embedding of a text
//	@Tags		inference
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.TextRequest	true	"Text to embed"
//	@Success	200		{object}	types.EmbeddingResponse
//	@Failure	500		{object}	types.ErrorResponse	"Vector not serializable"
//	@Router		/v1/embeddings [post]
func (h handlers) embeddings(w http.ResponseWriter, r *http.Request) {
	var req types.TextRequest
	h.serve(w, r, "embeddings", &req, func(ctx context.Context) (any, error) {
		vec, err := h.svc.SentenceEmbeddings(ctx, req.Text)
		return types.EmbeddingResponse{Embedding: vec}, err
	})
}

// summarize godoc
//
//	@Summary	Summarize a text
//	@Tags		inference
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.TextRequest	true	"Text to summarize"
//	@Success	200		{object}	types.SummaryResponse
//	@Router		/v1/summarize [post]
func (h handlers) summarize(w http.ResponseWriter, r *http.Request) {
	var req types.TextRequest
	h.serve(w, r, "summarize", &req, func(ctx context.Context) (any, error) {
		s, err := h.svc.Summarize(ctx, req.Text)
		return types.SummaryResponse{Summary: s}, err
	})
}

// ask godoc
//
//	@Summary	Extract the answer to a question from a context passage
//	@Tags		inference
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.AskRequest	true	"Question and context"
//	@Success	200		{object}	types.Answer
//	@Router		/v1/ask [post]
func (h handlers) ask(w http.ResponseWriter, r *http.Request) {
	var req types.AskRequest
	h.serve(w, r, "ask", &req, func(ctx context.Context) (any, error) {
		return h.svc.Ask(ctx, req.Question, req.Context)
	})
}

// zeroShot godoc
//
//	@Summary	Pick the best of a set of candidate labels
//	@Tags		inference
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.ZeroShotRequest	true	"Text and candidate labels"
//	@Success	200		{object}	types.Label
//	@Failure	400		{object}	types.ErrorResponse	"No candidate labels"
//	@Router		/v1/zero-shot [post]
func (h handlers) zeroShot(w http.ResponseWriter, r *http.Request) {
	var req types.ZeroShotRequest
	h.serve(w, r, "zero_shot", &req, func(ctx context.Context) (any, error) {
		return h.svc.ZeroShot(ctx, req.Text, req.Labels)
	})
}

// ner godoc
//
//	@Summary	Named entities of a text
//	@Tags		inference
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.TextRequest	true	"Text to tag"
//	@Success	200		{object}	types.EntitiesResponse
//	@Router		/v1/ner [post]
func (h handlers) ner(w http.ResponseWriter, r *http.Request) {
	var req types.TextRequest
	h.serve(w, r, "ner", &req, func(ctx context.Context) (any, error) {
		ents, err := h.svc.NER(ctx, req.Text)
		if ents == nil {
			ents = []types.Entity{}
		}
		return types.EntitiesResponse{Entities: ents}, err
	})
}

// warmup godoc
//
//	@Summary	Build an engine in the background
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.WarmupRequest	true	"Capability and, for translation, the language pair"
//	@Success	202		{object}	types.WarmupResponse
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/warmup [post]
func (h handlers) warmup(w http.ResponseWriter, r *http.Request) {
	var req types.WarmupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	start := time.Now()
	t, err := manager.NewTarget(req.Capability, req.Source, req.Target)
	if err == nil {
		var op string
		if op, err = h.svc.Warmup(r.Context(), t); err == nil {
			writeJSON(w, http.StatusAccepted, types.WarmupResponse{OpID: op})
			logEnd(r, "warmup", http.StatusAccepted, start, nil)
			return
		}
	}
	logEnd(r, "warmup", writeError(w, err), start, err)
}

// models godoc
//
//	@Summary	List configured models and backends
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	types.ModelsResponse
//	@Router		/models [get]
func (h handlers) models(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Models())
}

// languages godoc
//
//	@Summary	List supported language codes
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	types.LanguagesResponse
//	@Router		/languages [get]
func (h handlers) languages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Languages())
}

// status godoc
//
//	@Summary	Built engines, queue depths and build counters
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	types.StatusResponse
//	@Router		/status [get]
func (h handlers) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// serve decodes the request body into dst and runs one dispatch call.
func (h handlers) serve(w http.ResponseWriter, r *http.Request, op string, dst any, run func(context.Context) (any, error)) {
	if !decodeJSON(w, r, dst) {
		return
	}
	start := time.Now()
	logStart(r, op)
	ctx, cancel := dispatchContext(r.Context())
	defer cancel()

	resp, err := run(ctx)
	if err != nil {
		// Client disconnected; nobody is left to read an error.
		if r.Context().Err() != nil {
			logEnd(r, op, statusClientClosed, start, err)
			return
		}
		logEnd(r, op, writeError(w, err), start, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	logEnd(r, op, http.StatusOK, start, nil)
}

// decodeJSON enforces a JSON content type and the body limit. It writes the
// error response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, manager.KindInvalidInput, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, manager.KindInvalidInput, "request body too large")
			return false
		}
		writeJSONError(w, http.StatusBadRequest, manager.KindInvalidInput, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
