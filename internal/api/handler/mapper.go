package handler

import (
	"io"
	"mime/multipart"

	"github.com/peliculas/catalog-api/internal/core/domain"
	"github.com/peliculas/catalog-api/internal/core/ports"
)

// --- Request → Service input ---

func toMovieFields(f movieForm) domain.MovieFields {
	return domain.MovieFields{
		Name:           f.Name,
		Description:    f.Description,
		Duration:       f.Duration,
		Classification: domain.Classification(f.Classification),
		CategoryID:     f.CategoryID,
	}
}

func toUploads(headers []*multipart.FileHeader) []domain.Upload {
	uploads := make([]domain.Upload, 0, len(headers))
	for _, fh := range headers {
		uploads = append(uploads, domain.Upload{
			Filename: fh.Filename,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return uploads
}

// --- Domain → Response ---

func toMovieResponse(m *domain.Movie) movieResponse {
	urls := make([]string, 0, len(m.Images))
	for _, img := range m.Images {
		urls = append(urls, img.URL)
	}
	return movieResponse{
		ID:             m.ID,
		Name:           m.Name,
		Description:    m.Description,
		Duration:       m.Duration,
		Classification: string(m.Classification),
		CategoryID:     m.CategoryID,
		ImageURLs:      urls,
		CreatedAt:      m.CreatedAt,
	}
}

func toMovieResponses(movies []*domain.Movie) []movieResponse {
	out := make([]movieResponse, 0, len(movies))
	for _, m := range movies {
		out = append(out, toMovieResponse(m))
	}
	return out
}

func toPageResponse(p *ports.PageResult) pageResponse {
	return pageResponse{
		Items:      toMovieResponses(p.Items),
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		TotalItems: p.TotalItems,
	}
}

func toCategoryResponse(c *domain.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

func toCategoryResponses(categories []*domain.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	return out
}
