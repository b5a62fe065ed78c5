package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"safetyrisk/form"
	"safetyrisk/ml"
)

// Handler serves the prediction form with an already loaded predictor.
type Handler struct {
	predictor *ml.Predictor
	logger    *zap.Logger
	pages     *pages
}

func NewHandler(predictor *ml.Predictor, logger *zap.Logger) (*Handler, error) {
	if predictor == nil {
		return nil, errors.New("predictor is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p, err := loadPages()
	if err != nil {
		return nil, err
	}
	return &Handler{predictor: predictor, logger: logger, pages: p}, nil
}

func RegisterHandlers(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /predict", h.handlePredictForm)
	mux.HandleFunc("POST /api/predict", h.handlePredictAPI)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.Handle("GET /static/", http.FileServerFS(staticFS))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, pageData{Fields: form.Fields(nil, nil)})
}

func (h *Handler) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	values := r.PostForm

	features, err := form.Parse(values)
	if err != nil {
		var verr *form.ValidationError
		errors.As(err, &verr)
		h.renderPage(w, r, http.StatusUnprocessableEntity, pageData{
			Fields:  form.Fields(values, verr),
			Invalid: verr.Fields,
		})
		return
	}

	pred, err := h.predict(r, features)
	if err != nil {
		h.renderPage(w, r, http.StatusInternalServerError, pageData{
			Fields:         form.Fields(values, nil),
			InferenceError: err.Error(),
		})
		return
	}

	h.renderPage(w, r, http.StatusOK, pageData{
		Fields: form.Fields(form.Values(features), nil),
		Result: newResultView(pred),
	})
}

func (h *Handler) handlePredictAPI(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		h.respondJSON(w, r, http.StatusBadRequest, map[string]string{"error": "invalid json: " + err.Error()})
		return
	}
	values, err := form.ValuesFromJSON(body)
	if err != nil {
		h.respondJSON(w, r, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	features, err := form.Parse(values)
	if err != nil {
		var verr *form.ValidationError
		errors.As(err, &verr)
		h.respondJSON(w, r, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  err.Error(),
			"fields": verr.Fields,
		})
		return
	}

	pred, err := h.predict(r, features)
	if err != nil {
		h.respondJSON(w, r, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.respondJSON(w, r, http.StatusOK, pred)
}

func (h *Handler) predict(r *http.Request, features ml.Features) (ml.Prediction, error) {
	pred, err := h.predictor.Predict(r.Context(), features)
	if err != nil {
		h.logger.Error("inference failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
		return ml.Prediction{}, err
	}
	h.logger.Debug("prediction",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("label", pred.Label),
		zap.Float64s("vector", pred.Vector[:]),
	)
	return pred, nil
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := h.pages.render(&buf, data); err != nil {
		h.logger.Error("render page",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logWriteError(r, "write response", err)
	}
}

// respondJSON encodes before writing the header, so a value that cannot be
// encoded still gets a 500 instead of a truncated body.
func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		h.logWriteError(r, "encode response", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logWriteError(r, "write response", err)
	}
}

func (h *Handler) logWriteError(r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Error(err),
	)
}
