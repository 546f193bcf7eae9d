package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/brandvoice-promptgen/internal/config"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/ports"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/usecase"
	"github.com/kirillkom/brandvoice-promptgen/internal/observability/logging"
	"github.com/kirillkom/brandvoice-promptgen/internal/observability/metrics"
)

const (
	maxMultipartMemory = 2 << 20
	previewRunes       = 500
	backpressureWait   = 250 * time.Millisecond
)

// Services groups the inbound ports served over HTTP.
type Services struct {
	Ingest    ports.PostIngestor
	Reader    ports.PostReader
	Composer  ports.PromptComposer
	Generator ports.PostGenerator
	Templates ports.TemplateEditor
	Decoder   ports.UploadDecoder
}

type Router struct {
	cfg     config.Config
	svc     Services
	metrics *metrics.Metrics
}

// NewRouter builds the HTTP API. m may be nil, which disables /metrics.
func NewRouter(cfg config.Config, svc Services, m *metrics.Metrics) *Router {
	return &Router{
		cfg:     cfg,
		svc:     svc,
		metrics: m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.HandleFunc("POST /v1/posts", rt.addPost)
	mux.HandleFunc("POST /v1/posts/upload", rt.uploadPost)
	mux.HandleFunc("GET /v1/posts/stats", rt.stats)
	mux.HandleFunc("GET /v1/posts/{id}", rt.getPost)
	mux.HandleFunc("POST /v1/posts/similar", rt.similarPosts)
	mux.HandleFunc("POST /v1/posts/generate", rt.generatePost)
	mux.HandleFunc("POST /v1/prompts", rt.composePrompt)
	mux.HandleFunc("GET /v1/templates/{name}", rt.getTemplate)
	mux.HandleFunc("PUT /v1/templates/{name}", rt.putTemplate)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, backpressureWait, rt.recordRejected)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.recordRejected)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type addPostRequest struct {
	Content string `json:"content"`
	Name    string `json:"name"`
}

type addPostResponse struct {
	Message string       `json:"message"`
	Post    *domain.Post `json:"post"`
}

func (rt *Router) addPost(w http.ResponseWriter, r *http.Request) {
	var req addPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rt.ingest(w, r, req.Content, req.Name)
}

func (rt *Router) ingest(w http.ResponseWriter, r *http.Request, content, name string) {
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Post_%d", utf8.RuneCountInString(content)/100)
	}

	post, err := rt.svc.Ingest.AddPost(r.Context(), content, name)
	if err != nil {
		rt.recordIngest("error")
		writeError(w, r, err, "Error adding post")
		return
	}
	rt.recordIngest("ok")
	writeJSON(w, http.StatusCreated, addPostResponse{
		Message: usecase.SuccessMessage(post),
		Post:    post,
	})
}

type uploadResponse struct {
	Status  string `json:"status"`
	Preview string `json:"preview"`
	Content string `json:"content"`
}

// uploadPost decodes one text file. With form field add=true the content is
// ingested right away.
func (rt *Router) uploadPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, r, domain.NewValidationError("upload post", "No file selected"), "Error loading file")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, domain.NewValidationError("upload post", "No file selected"), "Error loading file")
		return
	}
	defer file.Close()

	content, err := rt.svc.Decoder.Decode(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, r, err, "Error loading file")
		return
	}

	if strings.EqualFold(strings.TrimSpace(r.FormValue("add")), "true") {
		rt.ingest(w, r, content, r.FormValue("name"))
		return
	}

	preview := content
	if utf8.RuneCountInString(content) > previewRunes {
		preview = domain.TruncateRunes(content, previewRunes) + "..."
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Status:  fmt.Sprintf("✅ File loaded: %d characters", utf8.RuneCountInString(content)),
		Preview: preview,
		Content: content,
	})
}

type statsResponse struct {
	domain.CollectionStats
	Text string `json:"text"`
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.svc.Reader.Stats(r.Context())
	if err != nil {
		writeError(w, r, err, "Error in calculating statistics")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{CollectionStats: stats, Text: stats.Text()})
}

func (rt *Router) getPost(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, r, domain.NewValidationError("get post", "Post id is required"), "Error")
		return
	}

	post, err := rt.svc.Reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Error retrieving post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

type similarRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type similarResponse struct {
	Results []domain.RetrievalResult `json:"results"`
}

func (rt *Router) similarPosts(w http.ResponseWriter, r *http.Request) {
	var req similarRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, r, domain.NewValidationError("similar posts", "Query is required"), "Error")
		return
	}

	results := rt.svc.Reader.Similar(r.Context(), req.Query, req.K)
	writeJSON(w, http.StatusOK, similarResponse{Results: results})
}

func (rt *Router) composePrompt(w http.ResponseWriter, r *http.Request) {
	var fields domain.ProductFields
	if !decodeJSON(w, r, &fields) {
		return
	}

	composition, err := rt.svc.Composer.Compose(r.Context(), fields)
	examples := 0
	if composition != nil {
		examples = len(composition.Examples)
	}
	if rt.metrics != nil {
		rt.metrics.RecordComposition(compositionOutcome(err), examples)
	}
	if err != nil {
		writeError(w, r, err, "Error generating prompt")
		return
	}
	writeJSON(w, http.StatusOK, composition)
}

type generatePostRequest struct {
	Prompt string `json:"prompt"`
}

type generatePostResponse struct {
	Post string `json:"post"`
}

func (rt *Router) generatePost(w http.ResponseWriter, r *http.Request) {
	var req generatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	text, err := rt.svc.Generator.GeneratePost(r.Context(), req.Prompt)
	if err != nil {
		writeError(w, r, err, "Error in retrieving post")
		return
	}
	writeJSON(w, http.StatusOK, generatePostResponse{Post: text})
}

type templateBody struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (rt *Router) getTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	content, err := rt.svc.Templates.LoadTemplate(r.Context(), name)
	if err != nil {
		writeError(w, r, err, "Error loading template")
		return
	}
	writeJSON(w, http.StatusOK, templateBody{Name: name, Content: content})
}

func (rt *Router) putTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var req templateBody
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := rt.svc.Templates.SaveTemplate(r.Context(), name, req.Content); err != nil {
		writeError(w, r, err, "Error saving template")
		return
	}
	writeJSON(w, http.StatusOK, templateBody{Name: name, Content: req.Content})
}

func (rt *Router) recordIngest(result string) {
	if rt.metrics != nil {
		rt.metrics.RecordIngest(result)
	}
}

func (rt *Router) recordRejected(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected(reason)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": domain.FailureMarker + " **Error:** invalid json"})
		return false
	}
	return true
}

// writeError logs the full cause and answers with the user-facing message.
func writeError(w http.ResponseWriter, r *http.Request, err error, title string) {
	status := mapErrorToHTTPStatus(err)
	logger := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request_failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		logger.Warn("request_rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	writeJSON(w, status, map[string]string{"error": domain.UserMessage(err, title)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
