package table

import (
	"context"
	"strings"
	"time"

	"github.com/YelzhanWeb/qrdine/internal/adapter/logger"
	"github.com/YelzhanWeb/qrdine/internal/domain"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

type Service struct {
	tables interfaces.TableRepository
	logger logger.Logger
}

func NewService(tables interfaces.TableRepository, lgr logger.Logger) *Service {
	return &Service{tables: tables, logger: lgr}
}

// CreateTable registers a table under the caller's venue. Code
// uniqueness within the venue is enforced by the store at write time.
func (s *Service) CreateTable(ctx context.Context, cmd interfaces.CreateTableCommand) (*domain.Table, error) {
	code := strings.TrimSpace(cmd.Code)
	if code == "" {
		return nil, domain.E(domain.KindInvalidArgument, "table code is required")
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		name = "Table " + code
	}

	tbl := &domain.Table{
		VenueID:   cmd.Principal.VenueID,
		Code:      code,
		Name:      name,
		Zone:      cmd.Zone,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.tables.Create(ctx, tbl); err != nil {
		return nil, err
	}

	s.logger.Info("table_created", "Table created", tbl.Code, map[string]interface{}{
		"table_id": tbl.ID,
		"venue_id": tbl.VenueID,
	})
	return tbl, nil
}
