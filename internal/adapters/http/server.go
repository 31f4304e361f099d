package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wellbeing/internal/domain"
	"wellbeing/internal/scoring"
	"wellbeing/internal/services/assessments"
)

// Server exposes the assessment service over REST.
type Server struct {
	svc     *assessments.Service
	logger  *slog.Logger
	metrics http.Handler
	timeout time.Duration
}

type Options struct {
	Logger *slog.Logger
	// Metrics serves /metrics. Defaults to the global Prometheus registry.
	Metrics http.Handler
	// RequestTimeout bounds each request. Inline scoring waits on the
	// recommendation generator, so this should exceed its timeout.
	RequestTimeout time.Duration
}

func New(svc *assessments.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Server{svc: svc, logger: opts.Logger, metrics: opts.Metrics, timeout: opts.RequestTimeout}
}

// Routes returns a chi.Router with every endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.getHealthz)
	r.Method(http.MethodGet, "/metrics", s.metrics)

	r.Get("/questions", s.getQuestions)
	r.Get("/questions/{orderIndex}", s.getQuestion)

	r.Route("/assessments", func(r chi.Router) {
		r.Post("/", s.postAssessment)
		r.Get("/", s.listAssessments)
		r.Get("/{id}", s.getAssessment)
		r.Put("/{id}/responses", s.putResponse)
		r.Get("/{id}/responses", s.getResponses)
		r.Post("/{id}/score", s.postScore)
		r.Get("/{id}/results", s.getResults)
	})

	r.Post("/score", s.postInlineScore)
	return r
}

func (s *Server) getHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getQuestions(w http.ResponseWriter, r *http.Request) {
	listing, err := s.svc.Catalog().All(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) getQuestion(w http.ResponseWriter, r *http.Request) {
	var orderIndex int
	if err := bindPath(r, "orderIndex", &orderIndex); err != nil {
		s.writeError(w, r, err)
		return
	}
	entry, err := s.svc.Catalog().Question(r.Context(), orderIndex)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type startRequest struct {
	UserID *string `json:"userId"`
}

func (s *Server) postAssessment(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		s.writeError(w, r, err)
		return
	}
	a, err := s.svc.Start(r.Context(), req.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) listAssessments(w http.ResponseWriter, r *http.Request) {
	var userID string
	if err := runtime.BindQueryParameter("form", true, true, "userId", r.URL.Query(), &userID); err != nil {
		s.writeError(w, r, domain.InvalidInput("%v", err))
		return
	}
	list, err := s.svc.List(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getAssessment(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := bindPath(r, "id", &id); err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) putResponse(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := bindPath(r, "id", &id); err != nil {
		s.writeError(w, r, err)
		return
	}
	var req domain.Response
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Record(r.Context(), id, req.QuestionID, req.OptionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) getResponses(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := bindPath(r, "id", &id); err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Responses(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type scoreAccepted struct {
	AssessmentID string `json:"assessmentId"`
	JobID        string `json:"jobId"`
}

// postScore scores inline by default. wait=false queues a job for the
// background workers and answers 202.
func (s *Server) postScore(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := bindPath(r, "id", &id); err != nil {
		s.writeError(w, r, err)
		return
	}
	wait := true
	var waitParam *bool
	if err := runtime.BindQueryParameter("form", true, false, "wait", r.URL.Query(), &waitParam); err != nil {
		s.writeError(w, r, domain.InvalidInput("%v", err))
		return
	}
	if waitParam != nil {
		wait = *waitParam
	}

	if !wait {
		jobID, err := s.svc.RequestScore(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, scoreAccepted{AssessmentID: id, JobID: jobID})
		return
	}
	report, err := s.svc.Score(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) getResults(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := bindPath(r, "id", &id); err != nil {
		s.writeError(w, r, err)
		return
	}
	profile, err := bindProfile(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Results(r.Context(), id, profile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type inlineScoreRequest struct {
	Responses json.RawMessage    `json:"responses"`
	Profile   domain.UserProfile `json:"profile"`
}

func (s *Server) postInlineScore(w http.ResponseWriter, r *http.Request) {
	var req inlineScoreRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := scoring.DecodeResponses(req.Responses)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.ScoreResponses(r.Context(), resp, req.Profile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func bindPath(r *http.Request, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return domain.InvalidInput("parameter %s: %v", name, err)
	}
	return nil
}

// bindProfile reads name, age and a comma separated goals list from the query.
func bindProfile(r *http.Request) (domain.UserProfile, error) {
	var (
		p     domain.UserProfile
		name  *string
		age   *int
		goals *[]string
	)
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "name", q, &name); err != nil {
		return p, domain.InvalidInput("%v", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "age", q, &age); err != nil {
		return p, domain.InvalidInput("%v", err)
	}
	if err := runtime.BindQueryParameter("form", false, false, "goals", q, &goals); err != nil {
		return p, domain.InvalidInput("%v", err)
	}
	if name != nil {
		p.Name = *name
	}
	if age != nil {
		p.Age = *age
	}
	if goals != nil {
		p.Goals = *goals
	}
	return p, nil
}

var errEmptyBody = domain.InvalidInput("missing body")

func decodeBody(r *http.Request, dest any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dest)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	if err != nil {
		return domain.InvalidInput("malformed body: %v", err)
	}
	return nil
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	reqID := middleware.GetReqID(r.Context())
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", reqID, "error", err)
		writeJSON(w, status, errorBody{Error: "internal error", RequestID: reqID})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error(), RequestID: reqID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
