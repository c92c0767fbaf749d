package sqlc

import (
	"context"
	"net"
	"time"

	"github.com/sqlc-dev/pqtype"
)

const (
	QuerierCtxTimeout = time.Second * 10
)

type DbManager struct {
	Analytics *AnalyticsManager
}

func NewDbManager(queries Querier, serverIpNet net.IPNet) DbManager {
	return DbManager{
		Analytics: NewAnalyticsManager(queries, serverIpNet),
	}
}

// NoopQuerier is used when the server runs without a database.
type NoopQuerier struct{}

var _ Querier = NoopQuerier{}

func (NoopQuerier) GetGamesCreatedCount(context.Context, pqtype.Inet) (int64, error)   { return 0, nil }
func (NoopQuerier) GetGamesFinishedCount(context.Context, pqtype.Inet) (int64, error)  { return 0, nil }
func (NoopQuerier) GetGamesForfeitedCount(context.Context, pqtype.Inet) (int64, error) { return 0, nil }
func (NoopQuerier) IncrementGamesCreatedCount(context.Context, pqtype.Inet) error      { return nil }
func (NoopQuerier) IncrementGamesFinishedCount(context.Context, pqtype.Inet) error     { return nil }
func (NoopQuerier) IncrementGamesForfeitedCount(context.Context, pqtype.Inet) error    { return nil }
