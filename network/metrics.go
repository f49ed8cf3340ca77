package network

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rony4d/go-landchain/emitter"
)

type metrics struct {
	blocksMinted prometheus.Counter
	emptyRounds  prometheus.Counter
	rejected     *prometheus.CounterVec
	poolSize     prometheus.Gauge
	chainHeight  prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		blocksMinted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "landchain",
			Name:      "blocks_minted_total",
			Help:      "Blocks minted and applied by every peer.",
		}),
		emptyRounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "landchain",
			Name:      "rounds_empty_total",
			Help:      "Rounds in which the validator accepted no transaction.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landchain",
			Name:      "transactions_rejected_total",
			Help:      "Pooled transactions rejected while minting, by reason.",
		}, []string{"reason"}),
		poolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "landchain",
			Name:      "pool_size",
			Help:      "Pending transactions waiting for the next election.",
		}),
		chainHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "landchain",
			Name:      "chain_height",
			Help:      "Height of the last applied block.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.blocksMinted, m.emptyRounds, m.rejected, m.poolSize, m.chainHeight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

var rejectionLabels = []struct {
	err   error
	label string
}{
	{emitter.ErrLandAlreadyDeclared, "land_already_declared"},
	{emitter.ErrLandNotRegistered, "land_not_registered"},
	{emitter.ErrNotLandOwner, "not_land_owner"},
	{emitter.ErrSelfTransfer, "self_transfer"},
	{emitter.ErrNonPositiveStake, "non_positive_stake"},
	{emitter.ErrInsufficientBalance, "insufficient_balance"},
	{emitter.ErrUnknownKind, "unknown_kind"},
}

func rejectionLabel(err error) string {
	for _, l := range rejectionLabels {
		if errors.Is(err, l.err) {
			return l.label
		}
	}
	return "other"
}
