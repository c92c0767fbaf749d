package sqlc

import (
	"context"
	"log"
	"net"

	"github.com/sqlc-dev/pqtype"
)

// AnalyticsManager keeps the per server counters. Failures are logged
// and never interrupt a game.
type AnalyticsManager struct {
	queries     Querier
	serverIpNet pqtype.Inet
}

func NewAnalyticsManager(queries Querier, serverIpNet net.IPNet) *AnalyticsManager {
	return &AnalyticsManager{
		queries:     queries,
		serverIpNet: pqtype.Inet{IPNet: serverIpNet, Valid: serverIpNet.IP != nil},
	}
}

func (a *AnalyticsManager) ServerIpNet() pqtype.Inet {
	return a.serverIpNet
}

func (a *AnalyticsManager) RecordGameCreated() {
	ctx, cancel := context.WithTimeout(context.Background(), QuerierCtxTimeout)
	defer cancel()

	if err := a.queries.IncrementGamesCreatedCount(ctx, a.serverIpNet); err != nil {
		log.Printf("failed to increment games created: %v\n", err)
	}
}

// RecordGameFinished counts every ended game, and forfeits on top.
func (a *AnalyticsManager) RecordGameFinished(forfeited bool) {
	ctx, cancel := context.WithTimeout(context.Background(), QuerierCtxTimeout)
	defer cancel()

	if err := a.queries.IncrementGamesFinishedCount(ctx, a.serverIpNet); err != nil {
		log.Printf("failed to increment games finished: %v\n", err)
	}
	if !forfeited {
		return
	}
	if err := a.queries.IncrementGamesForfeitedCount(ctx, a.serverIpNet); err != nil {
		log.Printf("failed to increment games forfeited: %v\n", err)
	}
}

type Counts struct {
	GamesCreated   int64
	GamesFinished  int64
	GamesForfeited int64
}

func (a *AnalyticsManager) GetCounts(ctx context.Context) (Counts, error) {
	var (
		counts Counts
		err    error
	)
	if counts.GamesCreated, err = a.queries.GetGamesCreatedCount(ctx, a.serverIpNet); err != nil {
		return Counts{}, err
	}
	if counts.GamesFinished, err = a.queries.GetGamesFinishedCount(ctx, a.serverIpNet); err != nil {
		return Counts{}, err
	}
	if counts.GamesForfeited, err = a.queries.GetGamesForfeitedCount(ctx, a.serverIpNet); err != nil {
		return Counts{}, err
	}
	return counts, nil
}
