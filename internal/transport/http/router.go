package http

import (
	"net/http"

	"go.uber.org/zap"
)

// Services groups the handlers' dependencies.
type Services struct {
	Samples     SampleAllocator
	Pools       PoolLister
	Processor   PoolProcessor
	Ledger      LedgerLister
	Dashboard   DashboardReader
	Corrections interface {
		CorrectionRequester
		CorrectionVerifier
	}
	Health Pinger
}

type RouterConfig struct {
	CORSOrigins    []string
	ExportPassword string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	Logger  *zap.Logger
}

// NewRouter wires every route behind CORS, panic recovery and request logging.
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/health", HandleHealth(svc.Health))
	mux.Handle("/samples", HandleAllocateSample(svc.Samples))
	mux.Handle("/pools", HandleListPools(svc.Pools))
	mux.Handle("/pools/", HandleProcessPool(svc.Processor))
	mux.Handle("/ledger", HandleListLedger(svc.Ledger))
	mux.Handle("/ledger/export", HandleExportLedger(svc.Ledger, cfg.ExportPassword))
	mux.Handle("/dashboard", HandleDashboard(svc.Dashboard))
	mux.Handle("/corrections", HandleRequestCorrection(svc.Corrections))
	mux.Handle("/corrections/verify", HandleVerifyCorrection(svc.Corrections))
	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}
	mux.Handle("/", NotFoundHandler())

	return RequestLogger(Recoverer(CORS(cfg.CORSOrigins, mux), cfg.Logger), cfg.Logger)
}
