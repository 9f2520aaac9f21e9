package models

// Catalog rows live in a separately maintained read-only SQLite file
// (anime_data.db). They are mapped but never migrated or written.

// Anime is one title of the local catalog.
type Anime struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	TitleUa     string `gorm:"column:titleUa" json:"titleUa"`
	TitleEn     string `gorm:"column:titleEn" json:"titleEn"`
	Description string `json:"description"`
	ReleaseDate string `gorm:"column:releaseDate" json:"releaseDate"`
	StatusID    int    `gorm:"column:status_id" json:"status_id"`
	TypeID      int    `gorm:"column:type_id" json:"type_id"`
}

// TableName maps Anime onto the catalog's singular table name.
func (Anime) TableName() string { return "anime" }

// Studio is one voice/dub studio of the local catalog.
type Studio struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `json:"name"`
}

// TableName maps Studio onto the catalog's fundub table.
func (Studio) TableName() string { return "fundub" }

// AnimeStudio links catalog anime to studios.
type AnimeStudio struct {
	AnimeID  uint `gorm:"column:anime_id"`
	StudioID uint `gorm:"column:fundub_id"`
}

// TableName maps AnimeStudio onto the catalog's join table.
func (AnimeStudio) TableName() string { return "anime_fundub" }
