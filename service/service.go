package service

import (
	"toloka2web/clients"

	"gorm.io/gorm"
)

// Services is the global service container
type Services struct {
	User    *UserService
	Setting *SettingService
	Release *ReleaseService
	Search  *SearchService
	Catalog *CatalogService
}

// GlobalServices is the global service instance
var GlobalServices *Services

// InitServices initializes all services
func InitServices(db, catalogDB *gorm.DB) {
	settingSvc := NewSettingService(db)
	catalogSvc := NewCatalogService(catalogDB)

	GlobalServices = &Services{
		User:    NewUserService(db),
		Setting: settingSvc,
		Release: NewReleaseService(db, clients.NewTolokaClient(), clients.NewTorrentStatusClient()),
		Search:  NewSearchService(clients.NewMALClient(), clients.NewTMDBClient(), catalogSvc),
		Catalog: catalogSvc,
	}
}
