// Command gateway-replay feeds a captured frame log (one JSON frame
// per line) through the envelope decoder and the state cache, serving
// Prometheus metrics while it runs. It exists to exercise the decode
// and sync pipeline against real traffic without a live connection.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/georgemarshall/serenity/internal/config"
	"github.com/georgemarshall/serenity/internal/gateway"
	"github.com/georgemarshall/serenity/internal/metrics"
	"github.com/georgemarshall/serenity/internal/state"
	"github.com/georgemarshall/serenity/internal/voice"
)

// maxFrameSize caps a single frame line; READY frames for large bots
// run into the megabytes.
const maxFrameSize = 16 << 20

func main() {
	var (
		configPath = flag.String("config", "", "path to the YAML config file")
		inputPath  = flag.String("input", "-", "frame log to replay, or - for stdin")
		protocol   = flag.String("protocol", "gateway", "frame protocol: gateway or voice")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *protocol != "gateway" && *protocol != "voice" {
		logger.Fatal("unknown protocol", zap.String("protocol", *protocol))
	}

	if err := run(cfg, logger, *inputPath, *protocol); err != nil {
		logger.Fatal("replay failed", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func run(cfg config.Config, logger *zap.Logger, inputPath, protocol string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer input.Close()

	cache := state.New(state.Settings{MaxMessages: cfg.MaxMessages})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.Listen, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("metrics listening", zap.String("addr", cfg.Listen))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		defer stop()
		if protocol == "voice" {
			return replayVoice(ctx, logger, input)
		}
		return replay(ctx, logger, cache, input)
	})
	return g.Wait()
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame log: %w", err)
	}
	return f, nil
}

// replay drives every frame through probe, envelope decode and cache
// apply, then logs a summary. Decode failures are counted and logged
// but do not stop the run.
func replay(ctx context.Context, logger *zap.Logger, cache *state.Cache, input io.Reader) error {
	sc := bufio.NewScanner(input)
	sc.Buffer(make([]byte, 0, 64<<10), maxFrameSize)

	var frames, failures, dispatched uint64
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		frames++

		info := gateway.Probe(line)
		ev, err := gateway.DecodeGatewayEvent(line)
		if err != nil {
			failures++
			metrics.FramesDecoded.WithLabelValues("error").Inc()
			logger.Warn("frame decode failed",
				zap.Uint64("op", info.Op),
				zap.String("type", info.Label),
				zap.Error(err))
			continue
		}
		metrics.FramesDecoded.WithLabelValues("ok").Inc()

		d, ok := ev.(gateway.DispatchEvent)
		if !ok {
			continue
		}
		dispatched++
		metrics.EventsDispatched.WithLabelValues(string(d.Event.EventType())).Inc()
		if prior := cache.Update(d.Event); prior != nil {
			logger.Debug("cache returned prior value",
				zap.String("type", string(d.Event.EventType())),
				zap.Uint64("seq", d.Seq))
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read frame log: %w", err)
	}

	logger.Info("replay finished",
		zap.Uint64("frames", frames),
		zap.Uint64("decode_failures", failures),
		zap.Uint64("dispatched", dispatched),
		zap.Int("guilds", len(cache.GuildIDs())),
		zap.Int("unavailable_guilds", len(cache.UnavailableGuilds())),
		zap.Uint64("shard_count", cache.ShardCount()))
	return nil
}

// replayVoice runs the secondary-protocol decoder over the log. There
// is no cache to feed; this exists to validate captured voice traffic.
func replayVoice(ctx context.Context, logger *zap.Logger, input io.Reader) error {
	sc := bufio.NewScanner(input)
	sc.Buffer(make([]byte, 0, 64<<10), maxFrameSize)

	var frames, failures, unknown uint64
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		frames++

		ev, err := voice.DecodeEvent(line)
		if err != nil {
			failures++
			metrics.FramesDecoded.WithLabelValues("error").Inc()
			logger.Warn("voice frame decode failed", zap.Error(err))
			continue
		}
		metrics.FramesDecoded.WithLabelValues("ok").Inc()
		if u, ok := ev.(*voice.UnknownEvent); ok {
			unknown++
			logger.Debug("unrecognized voice opcode", zap.Uint64("op", u.Op))
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read frame log: %w", err)
	}

	logger.Info("voice replay finished",
		zap.Uint64("frames", frames),
		zap.Uint64("decode_failures", failures),
		zap.Uint64("unknown_opcodes", unknown))
	return nil
}
