package service

import (
	"errors"
	"fmt"

	"toloka2web/apperr"
	"toloka2web/models"

	"gorm.io/gorm"
)

// CatalogService serves lookups against the read-only local catalog
// database. A missing catalog file leaves db nil; lookups then return
// empty results instead of failing.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService constructs a catalog service
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Available reports whether the catalog database was opened.
func (s *CatalogService) Available() bool {
	return s.db != nil
}

// SearchAnime lists catalog titles, optionally filtered by a name fragment
// matched against both the Ukrainian and English titles.
func (s *CatalogService) SearchAnime(query string) ([]models.Anime, error) {
	if s.db == nil {
		return []models.Anime{}, nil
	}

	q := s.db.Order("id")
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("titleUa LIKE ? OR titleEn LIKE ?", pattern, pattern)
	}

	var anime []models.Anime
	if err := q.Find(&anime).Error; err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	return anime, nil
}

// AnimeByID fetches one catalog title
func (s *CatalogService) AnimeByID(id uint) (*models.Anime, error) {
	if s.db == nil {
		return nil, apperr.NotFound("Anime not found")
	}

	var anime models.Anime
	if err := s.db.First(&anime, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Anime not found")
		}
		return nil, fmt.Errorf("failed to get anime: %w", err)
	}
	return &anime, nil
}

// StudiosForAnime lists the studios that dubbed the given title.
func (s *CatalogService) StudiosForAnime(animeID uint) ([]models.Studio, error) {
	if s.db == nil {
		return []models.Studio{}, nil
	}

	var studios []models.Studio
	err := s.db.
		Joins("JOIN anime_fundub ON anime_fundub.fundub_id = fundub.id").
		Where("anime_fundub.anime_id = ?", animeID).
		Order("fundub.id").
		Find(&studios).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list studios for anime: %w", err)
	}
	return studios, nil
}

// SearchStudios lists studios, optionally filtered by a name fragment.
func (s *CatalogService) SearchStudios(query string) ([]models.Studio, error) {
	if s.db == nil {
		return []models.Studio{}, nil
	}

	q := s.db.Order("id")
	if query != "" {
		q = q.Where("name LIKE ?", "%"+query+"%")
	}

	var studios []models.Studio
	if err := q.Find(&studios).Error; err != nil {
		return nil, fmt.Errorf("failed to search studios: %w", err)
	}
	return studios, nil
}

// StudioByID fetches one studio
func (s *CatalogService) StudioByID(id uint) (*models.Studio, error) {
	if s.db == nil {
		return nil, apperr.NotFound("Studio not found")
	}

	var studio models.Studio
	if err := s.db.First(&studio, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Studio not found")
		}
		return nil, fmt.Errorf("failed to get studio: %w", err)
	}
	return &studio, nil
}

// AnimeForStudio lists the titles a studio has dubbed.
func (s *CatalogService) AnimeForStudio(studioID uint) ([]models.Anime, error) {
	if s.db == nil {
		return []models.Anime{}, nil
	}

	var anime []models.Anime
	err := s.db.
		Joins("JOIN anime_fundub ON anime_fundub.anime_id = anime.id").
		Where("anime_fundub.fundub_id = ?", studioID).
		Order("anime.id").
		Find(&anime).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list anime for studio: %w", err)
	}
	return anime, nil
}
