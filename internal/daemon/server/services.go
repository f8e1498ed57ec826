package server

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/barkeep-io/barkeep/internal/buildinfo"
	"github.com/barkeep-io/barkeep/internal/config"
	"github.com/barkeep-io/barkeep/internal/rpc"
	"github.com/barkeep-io/barkeep/internal/statusbar"
)

// statusBarService implements rpc.StatusBarServer on top of the daemon's
// status bar.
type statusBarService struct {
	server *Server
}

func (s *statusBarService) GetStatus(ctx context.Context, _ *rpc.Empty) (*rpc.StatusResponse, error) {
	bar := s.server.bar

	sections := []statusbar.Section{statusbar.SectionAlwaysVisible, statusbar.SectionHidden}
	if bar.AlwaysHiddenEnabled() {
		sections = append(sections, statusbar.SectionAlwaysHidden)
	}

	resp := &rpc.StatusResponse{
		Version:             buildinfo.Version,
		PID:                 os.Getpid(),
		Port:                s.server.port,
		AlwaysHiddenEnabled: bar.AlwaysHiddenEnabled(),
	}
	for _, section := range sections {
		items := 0
		if bar.ItemFor(section) != nil {
			items = 1
		}
		resp.Sections = append(resp.Sections, rpc.SectionStatus{
			Section: section.String(),
			Hidden:  bar.IsSectionHidden(section),
			Items:   items,
		})
	}
	return resp, nil
}

func (s *statusBarService) ShowSection(ctx context.Context, req *rpc.SectionRequest) (*rpc.Empty, error) {
	section, err := statusbar.ParseSection(req.Section)
	if err != nil {
		return nil, err
	}
	s.server.bar.Show(section)
	return &rpc.Empty{}, nil
}

func (s *statusBarService) HideSection(ctx context.Context, req *rpc.SectionRequest) (*rpc.Empty, error) {
	section, err := statusbar.ParseSection(req.Section)
	if err != nil {
		return nil, err
	}
	s.server.bar.Hide(section)
	return &rpc.Empty{}, nil
}

func (s *statusBarService) ToggleSection(ctx context.Context, req *rpc.SectionRequest) (*rpc.Empty, error) {
	section, err := statusbar.ParseSection(req.Section)
	if err != nil {
		return nil, err
	}
	s.server.bar.Toggle(section)
	return &rpc.Empty{}, nil
}

func (s *statusBarService) SetAlwaysHidden(ctx context.Context, req *rpc.SetAlwaysHiddenRequest) (*rpc.Empty, error) {
	if err := persistAlwaysHidden(req.Enabled); err != nil {
		return nil, err
	}
	s.server.bar.SetAlwaysHiddenEnabled(req.Enabled)
	return &rpc.Empty{}, nil
}

func (s *statusBarService) Shutdown(ctx context.Context, _ *rpc.Empty) (*rpc.Empty, error) {
	log.Println("[server] shutdown requested")
	select {
	case s.server.shutdown <- struct{}{}:
	default:
	}
	return &rpc.Empty{}, nil
}

// persistAlwaysHidden records the always-hidden choice in settings so it
// survives restarts. The settings watcher sees the write too, which is
// harmless: reapplying the same value is a no-op.
func persistAlwaysHidden(enabled bool) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settings.Sections.AlwaysHiddenEnabled = enabled
	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
