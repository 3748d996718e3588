package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	grpcAdapter "github.com/quentinrf/ambient-backlight/internal/adapters/grpc"
	"github.com/quentinrf/ambient-backlight/internal/adapters/httpapi"
	"github.com/quentinrf/ambient-backlight/internal/adapters/memory"
	"github.com/quentinrf/ambient-backlight/internal/adapters/sqlite"
	"github.com/quentinrf/ambient-backlight/internal/config"
	"github.com/quentinrf/ambient-backlight/internal/domain"
	"github.com/quentinrf/ambient-backlight/internal/ports"
)

const journalBuffer = 64

// InitLogger sends zerolog console output to stderr at level
func InitLogger(level zerolog.Level) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// Status owns the sample journal and the optional status servers.
// None of it shares state with the control loop except through Journal.Offer.
type Status struct {
	Journal *ports.Journal

	repo       domain.SampleRepository
	closeRepo  func() error
	grpcServer *grpc.Server
	grpcLis    net.Listener
	httpServer *http.Server
	httpLis    net.Listener
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// StartStatus opens the history repository and starts the journal and any
// configured status servers
func StartStatus(ctx context.Context, cfg config.Ambient) (*Status, error) {
	s := &Status{closeRepo: func() error { return nil }}

	if cfg.HistoryDB != "" {
		r, err := sqlite.NewSampleRepository(cfg.HistoryDB)
		if err != nil {
			return nil, fmt.Errorf("open history %s: %w", cfg.HistoryDB, err)
		}
		s.repo = r
		s.closeRepo = r.Close
		log.Info().Str("db_path", cfg.HistoryDB).Msg("initialized SQLite history")
	} else {
		s.repo = memory.NewSampleRepository()
		log.Info().Msg("initialized in-memory history")
	}

	if err := s.listen(cfg); err != nil {
		s.closeListeners()
		s.closeRepo()
		return nil, err
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.Journal = ports.NewJournal(s.repo, cfg.Retention, journalBuffer)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Journal.Start(ctx)
	}()

	if s.grpcServer != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.grpcServer.Serve(s.grpcLis); err != nil {
				log.Error().Err(err).Msg("gRPC status server stopped")
			}
		}()
	}
	if s.httpServer != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			var err error
			if s.httpServer.TLSConfig != nil {
				err = s.httpServer.ServeTLS(s.httpLis, "", "")
			} else {
				err = s.httpServer.Serve(s.httpLis)
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("HTTP status server stopped")
			}
		}()
	}

	return s, nil
}

func (s *Status) listen(cfg config.Ambient) error {
	if cfg.GRPCAddr != "" {
		var opts []grpc.ServerOption
		if cfg.TLS.Enabled() {
			tlsCfg, err := cfg.TLS.Server()
			if err != nil {
				return fmt.Errorf("load TLS config: %w", err)
			}
			opts = append(opts, grpc.Creds(credentials.NewTLS(tlsCfg)))
			log.Info().Msg("gRPC mTLS enabled")
		} else {
			log.Warn().Msg("TLS_CERT not set, gRPC status served without TLS")
		}

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen gRPC %s: %w", cfg.GRPCAddr, err)
		}
		s.grpcLis = lis
		s.grpcServer = grpc.NewServer(opts...)
		grpcAdapter.RegisterStatusServer(s.grpcServer, grpcAdapter.NewStatusHandler(s.repo))
		log.Info().Stringer("addr", lis.Addr()).Msg("gRPC status server listening")
	}

	if cfg.HTTPAddr != "" {
		s.httpServer = &http.Server{
			Handler:           httpapi.NewEngine(httpapi.NewServer(s.repo)),
			ReadHeaderTimeout: 5 * time.Second,
		}
		if cfg.TLS.Enabled() {
			tlsCfg, err := cfg.TLS.Server()
			if err != nil {
				return fmt.Errorf("load TLS config: %w", err)
			}
			s.httpServer.TLSConfig = tlsCfg
		}

		lis, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			return fmt.Errorf("listen HTTP %s: %w", cfg.HTTPAddr, err)
		}
		s.httpLis = lis
		log.Info().Stringer("addr", lis.Addr()).Msg("HTTP status server listening")
	}
	return nil
}

func (s *Status) closeListeners() {
	if s.grpcLis != nil {
		s.grpcLis.Close()
	}
	if s.httpLis != nil {
		s.httpLis.Close()
	}
}

// GRPCAddr returns the bound gRPC address, or nil when disabled
func (s *Status) GRPCAddr() net.Addr {
	if s.grpcLis == nil {
		return nil
	}
	return s.grpcLis.Addr()
}

// HTTPAddr returns the bound HTTP address, or nil when disabled
func (s *Status) HTTPAddr() net.Addr {
	if s.httpLis == nil {
		return nil
	}
	return s.httpLis.Addr()
}

// Stop shuts the servers down, drains the journal goroutine and closes the repository
func (s *Status) Stop() {
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("HTTP status server shutdown")
		}
		cancel()
	}
	s.cancel()
	s.wg.Wait()

	if err := s.closeRepo(); err != nil {
		log.Warn().Err(err).Msg("closing history")
	}
}
