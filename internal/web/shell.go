// Package web implements the form and display shell: one text area, one
// submit button, and an output region showing a warning, the model's answer,
// or the error that prevented it.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oracle/oci-go-sdk/v65/generativeaiinference"
	"go.uber.org/zap"

	"github.com/zalbiraw/ocichat/internal/inference"
)

// State is one of the mutually exclusive render states of the output region.
type State string

const (
	StateIdle    State = "idle"
	StateWarning State = "warning"
	StateSuccess State = "success"
	StateError   State = "error"
)

// maxFormBytes caps the size of a submitted form.
const maxFormBytes = 1 << 20

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Asker sends a prompt to a model. *inference.Client satisfies it.
type Asker interface {
	Ask(ctx context.Context, prompt, modelID string, opts ...inference.AskOption) (generativeaiinference.ChatResponse, error)
}

// View is the data rendered into the page.
type View struct {
	State  State
	Prompt string
	Text   string
	Error  string
}

// Shell serves the chat form.
type Shell struct {
	asker   Asker
	modelID string
	log     *zap.SugaredLogger
}

// NewShell creates a shell that sends every submission to modelID.
func NewShell(asker Asker, modelID string, log *zap.SugaredLogger) *Shell {
	return &Shell{
		asker:   asker,
		modelID: modelID,
		log:     log.Named("web"),
	}
}

// Routes mounts the form on r.
func (s *Shell) Routes(r chi.Router) {
	r.Get("/", s.Index)
	r.Post("/", s.Submit)
}

// Index renders the empty form.
func (s *Shell) Index(w http.ResponseWriter, r *http.Request) {
	s.render(w, View{State: StateIdle})
}

// Submit handles a form submission. The page is always rendered with 200 so
// it stays usable for the next submission, whatever happened to this one.
func (s *Shell) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.log.Warnw("failed to parse form", "error", err)
		s.render(w, View{State: StateError, Error: err.Error()})
		return
	}

	s.render(w, s.Handle(r.Context(), r.PostForm.Get("prompt")))
}

// Handle runs one submission and returns the view to render. A blank prompt
// produces the warning state without calling the model.
func (s *Shell) Handle(ctx context.Context, prompt string) View {
	if strings.TrimSpace(prompt) == "" {
		s.log.Debugw("empty prompt submitted")
		return View{State: StateWarning, Prompt: prompt}
	}

	// The call runs to completion or timeout even if the browser goes away.
	ctx = context.WithoutCancel(ctx)

	start := time.Now()
	resp, err := s.asker.Ask(ctx, prompt, s.modelID)
	if err != nil {
		s.log.Errorw("ask failed", "elapsed", time.Since(start), "error", err)
		return View{State: StateError, Prompt: prompt, Error: err.Error()}
	}

	text, err := inference.FirstText(resp)
	if err != nil {
		s.log.Errorw("unexpected response shape", "error", err)
		return View{State: StateError, Prompt: prompt, Error: err.Error()}
	}

	s.log.Infow("answer rendered", "elapsed", time.Since(start), "answer_len", len(text))
	return View{State: StateSuccess, Prompt: prompt, Text: text}
}

func (s *Shell) render(w http.ResponseWriter, v View) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, v); err != nil {
		s.log.Errorw("failed to render page", "error", err)
	}
}
