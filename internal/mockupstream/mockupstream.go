// Package mockupstream serves canned AniList GraphQL responses from a
// directory of JSON files, for local development without network access.
//
// Files are named after the query: getTop100Manga.json, searchAnime.json.
// By-id queries read <name>-<id>.json (getMangaById-30013.json). A missing
// file answers the way AniList does for an unknown id.
package mockupstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"anilistapi/internal/anilist"
	"anilistapi/pkg/models"
)

type Server struct {
	Dir string
	Log logrus.FieldLogger
}

func New(dir string, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{Dir: dir, Log: log}
}

type graphQLRequest struct {
	Query     string `json:"query"`
	Variables struct {
		ID int `json:"id"`
	} `json:"variables"`
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	q, ok := anilist.Match(req.Query)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown query")
		return
	}

	name := q.Name + ".json"
	if q.Operation == models.OpByID {
		name = fmt.Sprintf("%s-%d.json", q.Name, req.Variables.ID)
	}
	log := s.Log.WithFields(logrus.Fields{"query": q.Name, "file": name})

	b, err := os.ReadFile(filepath.Join(s.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("fixture missing")
		writeError(w, http.StatusNotFound, "Not Found.")
		return
	}
	if err != nil {
		log.WithError(err).Error("read fixture")
		writeError(w, http.StatusInternalServerError, "cannot read "+name)
		return
	}

	// a broken fixture should fail loudly, not as an empty page
	if !json.Valid(b) {
		log.Error("fixture is not valid JSON")
		writeError(w, http.StatusInternalServerError, name+" invalid JSON")
		return
	}

	log.Debug("fixture served")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":   nil,
		"errors": []map[string]any{{"message": msg, "status": status}},
	})
}
