package main

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"

	"github.com/llehouerou/wavesd/internal/artwork"
	"github.com/llehouerou/wavesd/internal/config"
	"github.com/llehouerou/wavesd/internal/control"
	"github.com/llehouerou/wavesd/internal/errmsg"
	"github.com/llehouerou/wavesd/internal/focus"
	"github.com/llehouerou/wavesd/internal/lastfm"
	"github.com/llehouerou/wavesd/internal/mpris"
	"github.com/llehouerou/wavesd/internal/notify"
	"github.com/llehouerou/wavesd/internal/playback"
	"github.com/llehouerou/wavesd/internal/player"
	"github.com/llehouerou/wavesd/internal/session"
	"github.com/llehouerou/wavesd/internal/state"
	"github.com/llehouerou/wavesd/internal/wakelock"
	"github.com/llehouerou/wavesd/internal/widget"
)

// storage is what the store goroutine hands back for shutdown.
type storage struct {
	mgr       *state.Manager
	scrobbler *lastfm.Scrobbler
}

func run(ctx context.Context, cfg *config.Config, paths []string) error {
	eng := player.New()
	defer eng.Close()

	host, err := mpris.New()
	if err != nil {
		return err
	}

	// The D-Bus constructors fall back to stubs without a bus
	notifier, _ := notify.New()
	broadcaster, _ := widget.New()
	lock, _ := wakelock.New()

	notif := cfg.GetNotification()
	covers, err := artwork.NewCache(afero.NewOsFs(), filepath.Join(xdg.CacheHome, "wavesd", "covers"), notif.CoverSize)
	if err != nil {
		slog.Warn(errmsg.Format(errmsg.OpArtwork, err))
		covers = nil
	} else {
		go covers.Prune()
	}

	deps := playback.Deps{
		Engine:   eng,
		Host:     host,
		Renderer: notify.NewSurfaceRenderer(notifier),
		Widget:   broadcaster,
		WakeLock: lock,
		Artwork:  covers,
	}

	ctl, err := control.Connect()
	if err != nil {
		slog.Warn(errmsg.Format(errmsg.OpControlBus, err))
	} else {
		deps.Effects = ctl
	}

	pb := cfg.GetPlayback()
	sess := cfg.GetSessionConfig()
	w := cfg.GetWidget()
	svc := playback.New(deps, playback.Options{
		DetectHeadset:       pb.DetectHeadset,
		PlayOnHeadsetInsert: pb.PlayOnHeadsetInsert,
		Focus: focus.Options{
			ResumeOnGain: pb.ResumeOnGain,
			Ducking:      pb.AudioDucking,
			PauseOnDuck:  pb.PauseOnDuck,
		},
		LockscreenCover: notif.LockscreenCover,
		Detach:          notif.Detach,
		Publish: session.Options{
			Interval:        sess.PublishInterval,
			StaleWorkaround: sess.StaleStateWorkaround,
			StaleTimeout:    sess.StaleStateTimeout,
		},
		WidgetEnabled: w.Enabled,
		WidgetTitle:   w.DefaultTitle,
		Volume:        pb.Volume,
	})

	host.Serve(svc)
	if ctl != nil {
		if err := ctl.Serve(svc); err != nil {
			slog.Warn(errmsg.Format(errmsg.OpControlBus, err))
		}
	}
	if err := control.WatchSleep(ctx, svc.HandleFocus); err != nil {
		slog.Warn(errmsg.Format(errmsg.OpSleepWatch, err))
	}

	// Playback works before the store is open; queue restore waits for it.
	stores := make(chan storage, 1)
	go func() {
		stores <- openStorage(cfg, svc)
	}()

	if len(paths) > 0 {
		if err := svc.LoadPaths(paths, 0); err != nil {
			slog.Error(errmsg.Format(errmsg.OpQueueLoad, err))
		}
	} else if cfg.ShouldRestoreQueue() {
		svc.RestoreQueue(false)
	}

	slog.Info("wavesd started")
	<-ctx.Done()
	slog.Info("wavesd stopping")

	// Producers first, then the coordinator, then what it saves into
	if err := host.Close(); err != nil {
		slog.Debug("close mpris host", "error", err)
	}
	if ctl != nil {
		if err := ctl.Close(); err != nil {
			slog.Debug("close control bus", "error", err)
		}
	}
	svc.Close()

	st := <-stores
	if st.scrobbler != nil {
		st.scrobbler.Close()
	}
	if st.mgr != nil {
		if err := st.mgr.Close(); err != nil {
			slog.Warn("close store", "error", err)
		}
	}
	return nil
}

func openStorage(cfg *config.Config, svc *playback.Service) storage {
	mgr, err := state.Open(cfg.DBPath)
	if err != nil {
		slog.Error(errmsg.Format(errmsg.OpInitialize, err))
		return storage{}
	}
	svc.SetStore(mgr)
	return storage{mgr: mgr, scrobbler: startScrobbler(cfg, svc, mgr)}
}

// startScrobbler returns nil when Last.fm is not configured or not linked.
func startScrobbler(cfg *config.Config, svc *playback.Service, mgr *state.Manager) *lastfm.Scrobbler {
	if !cfg.HasLastfmConfig() {
		return nil
	}
	key := cfg.Lastfm.SessionKey
	if key == "" {
		sess, err := mgr.GetLastfmSession()
		if err != nil {
			slog.Warn(errmsg.Format(errmsg.OpLastfmAuth, err))
			return nil
		}
		if sess == nil {
			slog.Info("Last.fm configured but not linked, run wavesctl lastfm-auth")
			return nil
		}
		key = sess.SessionKey
	}

	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
	client.Link(key)
	scrobbler := lastfm.NewScrobbler(client, svc, mgr)
	svc.AddListener(scrobbler)
	return scrobbler
}
