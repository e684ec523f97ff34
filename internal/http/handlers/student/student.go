// Package student contains all HTTP handlers for the student roster and
// its coffee leaderboard.
//
// Every exported function is a factory: it receives its dependencies once
// at startup and returns the http.HandlerFunc that runs per request.
//
//	router.HandleFunc("POST /api/students", student.New(storage, log, m))
package student

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aanand-mishra/coffee-tracker/internal/http/middleware"
	"github.com/aanand-mishra/coffee-tracker/internal/metrics"
	"github.com/aanand-mishra/coffee-tracker/internal/storage"
	"github.com/aanand-mishra/coffee-tracker/internal/types"
	"github.com/aanand-mishra/coffee-tracker/internal/utils/response"
)

var validate = newValidator()

// newValidator reports field names by their json tag, so a missing name
// reads "field name is required" rather than "field Name is required".
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// New handles POST /api/students.
//
// Request body:
//
//	{ "name": "Alice" }
//
// Success (201 Created): the stored student with coffee_count 0.
//
// Errors:
//
//	400 empty/malformed body, blank name, or duplicate name
//	500 database error
func New(st storage.Storage, log *zap.Logger, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r, log)

		var req types.CreateStudentRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// Trim before validating so "   " fails the required rule and the
		// store never sees it.
		req.Name = strings.TrimSpace(req.Name)
		if err := validate.Struct(req); err != nil {
			var validateErrs validator.ValidationErrors
			if errors.As(err, &validateErrs) {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		student, err := st.CreateStudent(r.Context(), req.Name)
		if err != nil {
			writeStoreError(w, log, "create student", err)
			return
		}

		m.StudentsCreated.Inc()
		log.Info("student created",
			zap.Int64("id", int64(student.ID)),
			zap.String("name", student.Name))

		response.WriteJSON(w, http.StatusCreated, student)
	}
}

// GetByID handles GET /api/students/{id}.
func GetByID(st storage.Storage, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r, log)

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		student, err := st.GetStudentByID(r.Context(), id)
		if err != nil {
			writeStoreError(w, log, "get student", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetList handles GET /api/students and returns the roster by name:
//
//	{ "students": [ { "id": 1, "name": "Alice", ... } ] }
//
// An empty roster is { "students": [] }, never null.
func GetList(st storage.Storage, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r, log)

		students, err := st.GetStudents(r.Context())
		if err != nil {
			writeStoreError(w, log, "list students", err)
			return
		}

		log.Debug("listed students", zap.Int("count", len(students)))
		response.WriteJSON(w, http.StatusOK, types.StudentList{Students: students})
	}
}

// GetLeaderboard handles GET /api/leaderboard: the top three coffee
// drinkers, most coffees first.
func GetLeaderboard(st storage.Storage, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r, log)

		leaders, err := st.GetLeaderboard(r.Context(), storage.LeaderboardSize)
		if err != nil {
			writeStoreError(w, log, "get leaderboard", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, types.Leaderboard{Leaderboard: leaders})
	}
}

// AddCoffee handles POST /api/students/{id}/coffee and responds with the
// updated student.
//
// Errors:
//
//	400 id is not a positive integer
//	404 no such student
//	500 database error
func AddCoffee(st storage.Storage, log *zap.Logger, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r, log)

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		student, err := st.IncrementCoffee(r.Context(), id)
		if err != nil {
			writeStoreError(w, log, "add coffee", err)
			return
		}

		m.CoffeeIncrements.Inc()
		log.Info("coffee added",
			zap.Int64("id", int64(student.ID)),
			zap.String("name", student.Name),
			zap.Int64("coffee_count", student.CoffeeCount))

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// Delete handles DELETE /api/students/{id}.
//
// Success (200 OK):
//
//	{ "message": "student deleted", "id": 4 }
func Delete(st storage.Storage, log *zap.Logger, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r, log)

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		deleted, err := st.DeleteStudentByID(r.Context(), id)
		if err != nil {
			writeStoreError(w, log, "delete student", err)
			return
		}

		m.StudentsDeleted.Inc()
		log.Info("student deleted", zap.Int64("id", int64(deleted)))

		response.WriteJSON(w, http.StatusOK, types.DeleteResult{
			Message: "student deleted",
			ID:      deleted,
		})
	}
}

// pathID parses {id}; on failure it has already written the 400.
func pathID(w http.ResponseWriter, r *http.Request) (types.StudentID, bool) {
	id, err := types.ParseStudentID(r.PathValue("id"))
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return 0, false
	}
	return id, true
}

// writeStoreError maps storage sentinels onto HTTP statuses. Anything it
// does not recognise is a storage failure and becomes a 500.
func writeStoreError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(storage.ErrNotFound))
	case errors.Is(err, storage.ErrConflict):
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(storage.ErrConflict))
	case errors.Is(err, storage.ErrInvalidName):
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(storage.ErrInvalidName))
	default:
		log.Error("storage failure", zap.String("op", op), zap.Error(err))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
	}
}

func requestLogger(r *http.Request, log *zap.Logger) *zap.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return log.With(zap.String("request_id", id))
	}
	return log
}
