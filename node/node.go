// Package node wires agewitness components into a running node.
package node

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/go-agewitness/config"
	"github.com/spacemeshos/go-agewitness/log"
	"github.com/spacemeshos/go-agewitness/metrics"
	"github.com/spacemeshos/go-agewitness/p2p"
	"github.com/spacemeshos/go-agewitness/p2p/pubsub"
	"github.com/spacemeshos/go-agewitness/prune"
	"github.com/spacemeshos/go-agewitness/signing"
	"github.com/spacemeshos/go-agewitness/sql"
	"github.com/spacemeshos/go-agewitness/tradelimit"
	"github.com/spacemeshos/go-agewitness/witness"
	"github.com/spacemeshos/go-agewitness/witness/exchange"
)

const (
	AppLogger        = "app"
	P2PLogger        = "p2p"
	SQLLogger        = "sql"
	IssuerLogger     = "issuer"
	VerifierLogger   = "verifier"
	GossipLogger     = "gossip"
	ExchangeLogger   = "exchange"
	TradeLimitLogger = "tradelimit"
	PruneLogger      = "prune"
)

const (
	dbFile       = "state.sql"
	identityDir  = "identities"
	identityFile = "local.key"
)

// Option to modify an App instance.
type Option func(app *App)

// WithLog sets the root logger. Module loggers are derived from it and can only
// be more restrictive, so it should log at the lowest level of any module.
func WithLog(logger *zap.Logger) Option {
	return func(app *App) {
		app.log = logger
	}
}

// WithConfig overwrites default App config.
func WithConfig(conf *config.Config) Option {
	return func(app *App) {
		app.Config = conf
	}
}

// WithFs sets the filesystem used for account files and the signing key.
func WithFs(fs afero.Fs) Option {
	return func(app *App) {
		app.fs = fs
	}
}

// WithClock sets the clock used by all components.
func WithClock(clock clockwork.Clock) Option {
	return func(app *App) {
		app.clock = clock
	}
}

// New creates an instance of the agewitness app.
func New(opts ...Option) *App {
	defaultConfig := config.DefaultConfig()
	app := &App{
		Config:  &defaultConfig,
		log:     log.NewNop(),
		fs:      afero.NewOsFs(),
		clock:   clockwork.NewRealClock(),
		started: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(app)
	}
	app.levels = log.NewLevels(app.log)
	app.log = app.levels.Named(AppLogger, app.Config.LOGGING.AppLoggerLevel)
	return app
}

// App is the cli app singleton.
type App struct {
	Config *config.Config

	log    *zap.Logger
	levels *log.Levels
	fs     afero.Fs
	clock  clockwork.Clock

	fileLock   *flock.Flock
	signer     *signing.EdSigner
	edVerifier *signing.EdVerifier
	db         *sql.Database
	store      *witness.Store

	host     *p2p.Host
	pubsub   pubsub.PublishSubscriber
	issuer   *witness.Issuer
	verifier *witness.Verifier
	handler  *witness.Handler
	nonces   *witness.NonceSource
	policy   *tradelimit.Policy
	service  *witness.Service
	book     *exchange.AccountBook
	server   *exchange.Server
	client   *exchange.Client
	pruner   *prune.Pruner
	metrics  *metrics.Server

	started chan struct{}
	eg      errgroup.Group
}

// Started is closed once the node has finished starting.
func (app *App) Started() <-chan struct{} {
	return app.started
}

// Lock locks the app for exclusive use. It returns an error if the app is already locked.
func (app *App) Lock() error {
	lockDir := filepath.Dir(app.Config.FileLock)
	if err := os.MkdirAll(lockDir, 0o700); err != nil {
		return fmt.Errorf("creating dir %s for lock %s: %w", lockDir, app.Config.FileLock, err)
	}
	fl := flock.New(app.Config.FileLock)
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("flock %s: %w", app.Config.FileLock, err)
	} else if !locked {
		return fmt.Errorf("only one agewitness instance should be running (locking file %s)", fl.Path())
	}
	app.fileLock = fl
	return nil
}

// Unlock unlocks the app. It is a no-op if the app is not locked.
func (app *App) Unlock() {
	if app.fileLock == nil {
		return
	}
	if err := app.fileLock.Unlock(); err != nil {
		app.log.Error("failed to unlock file",
			zap.String("path", app.fileLock.Path()),
			zap.Error(err),
		)
	}
}

// Initialize validates the node configuration and prepares the data folder.
func (app *App) Initialize() error {
	if err := app.Config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := app.fs.MkdirAll(app.Config.DataDir(), 0o700); err != nil {
		return fmt.Errorf("ensure folders exist: %w", err)
	}
	app.Config.P2P.DataDir = app.Config.DataDir()
	return nil
}

// LoadIdentity loads the signing key of the node, creating it on first start.
func (app *App) LoadIdentity() error {
	path := filepath.Join(app.Config.DataDir(), identityDir, identityFile)
	prefix := []byte(app.Config.NetworkID)
	signer, err := signing.NewEdSigner(signing.WithPrefix(prefix), signing.WithFs(app.fs), signing.FromFile(path))
	if errors.Is(err, fs.ErrNotExist) {
		app.log.Info("identity file not found, creating new identity", zap.String("path", path))
		signer, err = signing.NewEdSigner(signing.WithPrefix(prefix), signing.WithFs(app.fs), signing.ToFile(path))
	}
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}
	app.signer = signer
	app.log.Info("loaded identity", zap.Stringer("id", signer.NodeID()))
	return nil
}

func (app *App) addLogger(name string, level zapcore.Level) *zap.Logger {
	return app.levels.Named(name, level)
}

func (app *App) setupDB() error {
	path := filepath.Join(app.Config.DataDir(), dbFile)
	db, err := sql.Open("file:"+path,
		sql.WithLogger(app.addLogger(SQLLogger, app.Config.LOGGING.SQLLoggerLevel)),
		sql.WithLatencyMetering(app.Config.CollectMetrics),
	)
	if err != nil {
		return fmt.Errorf("open database %s: %w", path, err)
	}
	app.db = db
	return nil
}

// initServices creates the witness components on top of the database and the given broadcaster.
func (app *App) initServices(ctx context.Context, ps pubsub.PublishSubscriber) error {
	edVerifier := signing.NewEdVerifier(signing.WithVerifierPrefix([]byte(app.Config.NetworkID)))
	app.edVerifier = edVerifier
	app.pubsub = ps

	app.store = witness.NewStore()
	if err := witness.Warmup(ctx, app.db, app.store); err != nil {
		return err
	}
	app.log.Info("loaded witnesses", zap.Int("count", app.store.Len()))

	app.issuer = witness.NewIssuer(app.db, app.store, ps, edVerifier,
		witness.WithIssuerLogger(app.addLogger(IssuerLogger, app.Config.LOGGING.IssuerLoggerLevel)),
		witness.WithIssuerClock(app.clock),
	)
	app.verifier = witness.NewVerifier(edVerifier, app.Config.Witness.ReleaseDate,
		witness.WithVerifierLogger(app.addLogger(VerifierLogger, app.Config.LOGGING.VerifierLoggerLevel)),
		witness.WithVerifierClock(app.clock),
		witness.WithReleaseTolerance(app.Config.Witness.ReleaseTolerance),
	)
	nonces, err := witness.NewNonceSource(app.Config.Witness.NonceCacheSize)
	if err != nil {
		return err
	}
	app.nonces = nonces
	app.policy, err = tradelimit.New(app.Config.TradeLimit.Schedule,
		tradelimit.WithLogger(app.addLogger(TradeLimitLogger, app.Config.LOGGING.TradeLimitLoggerLevel)),
		tradelimit.WithClock(app.clock),
	)
	if err != nil {
		return err
	}
	app.service = witness.NewService(app.issuer, app.verifier, app.policy, app.nonces,
		witness.WithServiceLogger(app.log.Named("service")),
		witness.WithServiceClock(app.clock),
	)
	return nil
}

// issueAccounts issues witnesses for all configured account files and registers them
// for the direct exchange.
func (app *App) issueAccounts(ctx context.Context) error {
	app.book = exchange.NewAccountBook()
	for _, path := range app.Config.Witness.Accounts {
		fields, salt, err := LoadAccountFile(app.fs, path)
		if err != nil {
			return err
		}
		w, err := app.service.GetOrCreateMyWitness(ctx, fields, salt, app.signer)
		if err != nil && w == nil {
			return fmt.Errorf("issue witness for %s: %w", path, err)
		}
		if err != nil {
			// broadcast failures are retried by peers asking for the witness directly
			app.log.Warn("witness issued but not broadcast", zap.String("account", path), zap.Error(err))
		}
		if _, err := app.book.Add(exchange.Account{Fields: fields, Salt: salt, Signer: app.signer}); err != nil {
			return fmt.Errorf("register account %s: %w", path, err)
		}
		app.log.Info("account ready", zap.String("account", path), zap.Inline(w))
	}
	// witnesses issued offline or whose broadcast failed before a restart
	sent, err := app.issuer.PublishPending(ctx)
	if err != nil {
		app.log.Warn("failed to publish pending witnesses", zap.Int("published", sent), zap.Error(err))
	} else if sent > 0 {
		app.log.Info("published pending witnesses", zap.Int("count", sent))
	}
	return nil
}

func (app *App) startP2P(ctx context.Context) error {
	lg := app.addLogger(P2PLogger, app.Config.LOGGING.P2PLoggerLevel)
	host, err := p2p.New(ctx, lg, app.Config.P2P, []byte(app.Config.NetworkID))
	if err != nil {
		return err
	}
	app.host = host
	ps, err := pubsub.New(ctx, lg, host, pubsub.Config{
		Flood:          app.Config.P2P.Flood,
		IsBootnode:     app.Config.P2P.IsBootnode,
		MaxMessageSize: app.Config.P2P.MaxMessageSize,
		QueueSize:      pubsub.DefaultConfig().QueueSize,
	})
	if err != nil {
		return err
	}
	app.pubsub = ps
	return nil
}

func (app *App) startGossip() {
	gossipLog := app.addLogger(GossipLogger, app.Config.LOGGING.GossipLoggerLevel)
	opts := []witness.HandlerOpt{
		witness.WithHandlerLogger(gossipLog),
		witness.WithHandlerClock(app.clock),
		witness.WithLocalPeer(app.host.ID()),
	}
	if app.Config.Witness.SyntacticCheck {
		opts = append(opts, witness.WithSyntacticCheck(app.edVerifier))
	}
	app.handler = witness.NewHandler(app.db, app.store, opts...)
	app.pubsub.Register(pubsub.WitnessTopic, app.handler.HandleWitness)
}

func (app *App) startExchange() {
	lg := app.addLogger(ExchangeLogger, app.Config.LOGGING.ExchangeLoggerLevel)
	app.server = exchange.NewServer(app.host, app.book, app.store,
		exchange.WithLogger(lg),
		exchange.WithTimeout(app.Config.Exchange.Timeout),
	)
	app.server.Start()
	app.startClient(lg)
}

func (app *App) startClient(lg *zap.Logger) {
	app.client = exchange.NewClient(app.host, app.verifier, app.nonces,
		exchange.WithLogger(lg),
		exchange.WithTimeout(app.Config.Exchange.Timeout),
	)
}

// StartVerifier connects to the network without serving gossip or local accounts,
// for verifying witnesses of counter-parties.
func (app *App) StartVerifier(ctx context.Context) error {
	if err := app.setupDB(); err != nil {
		return err
	}
	if err := app.startP2P(ctx); err != nil {
		return err
	}
	if err := app.initServices(ctx, app.pubsub); err != nil {
		return err
	}
	app.startClient(app.addLogger(ExchangeLogger, app.Config.LOGGING.ExchangeLoggerLevel))
	return nil
}

func (app *App) startPruner(ctx context.Context) {
	if app.Config.Witness.PruneInterval == 0 {
		return
	}
	app.pruner = prune.New(app.db, app.Config.Witness.Retention,
		prune.WithLogger(app.addLogger(PruneLogger, app.Config.LOGGING.PruneLoggerLevel)),
		prune.WithClock(app.clock),
	)
	app.eg.Go(func() error {
		app.pruner.Run(ctx, app.Config.Witness.PruneInterval)
		return nil
	})
}

func (app *App) startMetrics() error {
	if !app.Config.CollectMetrics {
		return nil
	}
	addr := net.JoinHostPort("", strconv.Itoa(app.Config.MetricsPort))
	app.metrics = metrics.NewServer(app.log.Named("metrics"), addr)
	return app.metrics.Start()
}

// Start starts the node and blocks until the context is canceled.
func (app *App) Start(ctx context.Context) error {
	if err := app.setupDB(); err != nil {
		return err
	}
	if err := app.startMetrics(); err != nil {
		return err
	}
	if err := app.startP2P(ctx); err != nil {
		return err
	}
	if err := app.initServices(ctx, app.pubsub); err != nil {
		return err
	}
	app.startGossip()
	if err := app.host.Bootstrap(ctx); err != nil {
		app.log.Warn("bootstrap failed, waiting for inbound peers", zap.Error(err))
	}
	if err := app.issueAccounts(ctx); err != nil {
		return err
	}
	app.startExchange()
	app.startPruner(ctx)
	close(app.started)
	app.log.Info("node started",
		zap.Stringer("peer", app.host.ID()),
		zap.Stringer("id", app.signer.NodeID()),
		zap.Int("accounts", len(app.Config.Witness.Accounts)),
	)
	<-ctx.Done()
	return app.eg.Wait()
}

// Cleanup stops all services. Safe to call when Start failed midway.
func (app *App) Cleanup(ctx context.Context) {
	app.log.Info("app cleanup starting...")
	if app.server != nil {
		app.server.Stop()
	}
	if app.host != nil {
		if err := app.host.Stop(); err != nil {
			app.log.Warn("failed to stop p2p host", zap.Error(err))
		}
	}
	if app.metrics != nil {
		if err := app.metrics.Stop(ctx); err != nil {
			app.log.Warn("failed to stop metrics server", zap.Error(err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.log.Warn("failed to close database", zap.Error(err))
		}
	}
	app.log.Info("app cleanup completed")
}

// Client returns the exchange client, available after the node started.
func (app *App) Client() *exchange.Client {
	return app.client
}

// Service returns the witness facade, available after the node started.
func (app *App) Service() *witness.Service {
	return app.service
}

// Host returns the libp2p host, available after the node started.
func (app *App) Host() *p2p.Host {
	return app.host
}

// waitStopped bounds the time spent in cleanup.
func waitStopped(app *App, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		app.Cleanup(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		app.log.Error("app failed to clean up in time")
	}
}
