package rest

import "net/http"

func (that *Server) handlePing(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
	if _, err := writer.Write([]byte("pong")); err != nil {
		that.logger.Warn("failed to write ping response", "error", err)
	}
}
