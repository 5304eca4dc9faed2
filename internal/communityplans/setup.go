package communityplans

import (
	"github.com/forrest-fire-fund/cnx-backend/internal/db"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Expression indexes over the village_info document. They match the
// json_extract_path_text expressions generated by the list filters.
var planIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_plans_village_name
		ON community.plans (json_extract_path_text(village_info::json, 'name'))`,
	`CREATE INDEX IF NOT EXISTS idx_plans_district
		ON community.plans (json_extract_path_text(village_info::json, 'district'))`,
	`CREATE INDEX IF NOT EXISTS idx_plans_subdistrict
		ON community.plans (json_extract_path_text(village_info::json, 'subdistrict'))`,
	`CREATE INDEX IF NOT EXISTS idx_plans_forest_types
		ON community.plans USING GIN (forest_types)`,
}

// Init creates the community schema, migrates the plans table and its indexes.
func Init(d *gorm.DB) error {
	if err := db.EnsureSchema(d, "community"); err != nil {
		return eris.Wrap(err, "communityplans: ensure schema community")
	}

	if err := d.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return eris.Wrap(err, "communityplans: enable uuid-ossp")
	}

	if err := d.AutoMigrate(&Plan{}); err != nil {
		return eris.Wrap(err, "communityplans: auto-migrate plans")
	}

	for _, stmt := range planIndexes {
		if err := d.Exec(stmt).Error; err != nil {
			return eris.Wrap(err, "communityplans: create index")
		}
	}

	zap.L().Info("community plans module initialized")
	return nil
}
