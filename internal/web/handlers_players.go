package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/cssbattle/championship/internal/core"
	"github.com/cssbattle/championship/internal/logging"
	"github.com/cssbattle/championship/internal/web/templates"
)

// multipartOverhead is room for form boundaries and fields on top of the
// file itself.
const multipartOverhead = 1 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleIndex renders the upload page with the caller's preferences.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	client := clientID(w, r)

	players, err := s.service.Players(r.Context(), "")
	if err != nil {
		logging.FromContext(r.Context()).Warn("list players for page", "error", err)
	}
	groups, err := s.service.Groups(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Warn("list groups for page", "error", err)
	}

	params := templates.PageParams{
		MaxFileSize: s.cfg.Import.MaxFileSize,
		Theme:       s.preference(r, client, "theme"),
		Language:    s.preference(r, client, "language"),
		Players:     players,
		Groups:      groups,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Page(params).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

// handleDownloadTemplate returns the roster template workbook.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.service.Template()
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// previewResponse is the JSON body of a successful preview.
type previewResponse struct {
	FileName string              `json:"file_name"`
	Total    int                 `json:"total"`
	Players  []core.PlayerRecord `json:"players"`
}

// handlePreview parses an upload and returns its players without saving.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.formFile(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	defer file.Close()

	records, err := s.service.Preview(r.Context(), header.Filename, file)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if isHTMX(r) {
		if err := templates.Preview(header.Filename, records).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render preview", "error", err)
		}
		return
	}
	writeJSON(w, previewResponse{FileName: header.Filename, Total: len(records), Players: records})
}

// handleImport parses an upload and saves its players. Any failure leaves
// the roster unchanged.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.formFile(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r, clientID(w, r))
	result, err := s.service.Import(ctx, header.Filename, file)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Trigger", "players-imported")
		if err := templates.ImportResult(result).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render import result", "error", err)
		}
		return
	}
	writeJSON(w, result)
}

// playersResponse is the JSON body of the player listing.
type playersResponse struct {
	Group   string        `json:"group,omitempty"`
	Total   int           `json:"total"`
	Players []core.Player `json:"players"`
}

// handleListPlayers returns stored players, optionally for one group.
func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	group := r.URL.Query().Get("group")

	players, err := s.service.Players(r.Context(), group)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if players == nil {
		players = []core.Player{}
	}

	if isHTMX(r) {
		if err := templates.PlayerTable(players).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render players", "error", err)
		}
		return
	}
	writeJSON(w, playersResponse{Group: group, Total: len(players), Players: players})
}

// formFile extracts the "file" part of a multipart upload. Bodies larger
// than the import limit fail with core.ErrFileTooLarge.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxSize)
		}
		return nil, nil, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errNoFile
	}
	return file, header, nil
}
