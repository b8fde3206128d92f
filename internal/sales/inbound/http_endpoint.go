package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/gosales/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gosales/internal/pkg/pkgrouter"
)

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) UploadSales(ctx context.Context, r *http.Request) (any, error) {
	reader, fileName, cleanup, err := extractCSVFile(r)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result, err := h.uc.Upload(ctx, reader, fileName)
	if err != nil {
		return nil, err
	}

	return UploadResponse{
		JobID:         result.JobID,
		FileName:      result.FileName,
		FileSizeBytes: result.FileSizeBytes,
		StatusURL:     "/sales/jobs/" + result.JobID,
	}, nil
}

func (h *HTTPEndpoint) JobStatus(ctx context.Context, r *http.Request) (any, error) {
	jobID := strings.TrimSpace(pkgrouter.GetParam(ctx, "job_id"))

	result, err := h.uc.Status(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return toJobStatusResponse(result.Job), nil
}

// DownloadResult streams a finished artifact back as a CSV attachment.
func (h *HTTPEndpoint) DownloadResult(w http.ResponseWriter, r *http.Request) {
	fileName := strings.TrimSpace(pkgrouter.GetParam(r.Context(), "file_name"))

	result, err := h.uc.Result(r.Context(), fileName)
	if err != nil {
		writeHTTPError(w, err)
		return
	}
	defer result.Content.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Name))
	if result.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.Size, 10))
	}

	if _, err := io.Copy(w, result.Content); err != nil {
		slog.ErrorContext(r.Context(), "failed to stream artifact", "file", result.Name, "error", err)
	}
}

func extractCSVFile(r *http.Request) (io.ReadCloser, string, func(), error) {
	contentType := r.Header.Get("Content-Type")
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil && strings.EqualFold(mediaType, "multipart/form-data") {
			return extractMultipartFile(r)
		}
	}

	if r.Body == nil {
		return nil, "", func() {}, pkgerror.NewInvalidInput(errors.New("empty request body"))
	}

	fileName := strings.TrimSpace(r.URL.Query().Get("file_name"))
	if fileName == "" {
		fileName = "upload.csv"
	}

	return r.Body, fileName, func() {}, nil
}

func extractMultipartFile(r *http.Request) (io.ReadCloser, string, func(), error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, "", func() {}, pkgerror.NewInvalidFormat()
	}

	for {
		part, err := reader.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, "", func() {}, pkgerror.NewInvalidInput(errors.New("file part is required"))
			}
			return nil, "", func() {}, pkgerror.NewInvalidFormat()
		}

		if part.FormName() == "file" {
			fileName := part.FileName()
			if fileName == "" {
				fileName = "upload.csv"
			}
			return part, fileName, func() { _ = part.Close() }, nil
		}
		_ = part.Close()
	}
}

func writeHTTPError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	message := "internal server error"

	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		code = perr.StatusCode()
		message = perr.Msg()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
