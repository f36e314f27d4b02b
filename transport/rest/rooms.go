package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rocketscienceinc/ludo-backend/internal/apperror"
)

type errorResponse struct {
	Error string        `json:"error"`
	Code  apperror.Kind `json:"code"`
}

// handleGetRoom returns the stored snapshot of a room.
func (that *Server) handleGetRoom(writer http.ResponseWriter, req *http.Request) {
	roomID := strings.ToUpper(mux.Vars(req)["id"])
	log := that.logger.With("method", "handleGetRoom", "roomID", roomID)

	room, err := that.rooms.GetRoom(req.Context(), roomID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrRoomNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrStoreUnavailable):
			status = http.StatusServiceUnavailable
			log.Error("failed to get room", "error", err)
		default:
			log.Error("failed to get room", "error", err)
		}

		that.writeJSON(writer, status, errorResponse{Error: apperror.Public(err), Code: apperror.KindOf(err)})

		return
	}

	that.writeJSON(writer, http.StatusOK, room.Public())
}

func (that *Server) writeJSON(writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	if err := json.NewEncoder(writer).Encode(body); err != nil {
		that.logger.Warn("failed to write response", "error", err)
	}
}
