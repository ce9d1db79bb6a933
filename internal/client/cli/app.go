// Package cli wires the cobra command tree of the world-clock client.
// Every mutation works offline; commands that change the list kick off a
// best-effort sync cycle afterwards.
package cli

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/worldclock/internal/client/services"
)

type App struct {
	clocks *services.ClockService
	sync   *services.SyncService
	out    io.Writer
	now    func() time.Time
}

func NewApp(clocks *services.ClockService, sync *services.SyncService, out io.Writer) *App {
	return &App{clocks: clocks, sync: sync, out: out, now: time.Now}
}

func (a *App) RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "worldclock",
		Short:        "A multi-device world clock list",
		Long:         "worldclock keeps an ordered list of clocks on this device and reconciles it with the other devices of the account whenever the server is reachable.",
		SilenceUsage: true,
	}
	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.renameCmd(),
		a.moveCmd(),
		a.removeCmd(),
		a.syncCmd(),
		a.resetCmd(),
	)
	return root
}

// bestEffortSync runs a cycle after a local mutation. Failures only warn:
// the edit is already durable locally and will be retried.
func (a *App) bestEffortSync(cmd *cobra.Command) {
	if err := a.sync.Sync(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "sync: %v\n", err)
	}
}

var utcOffsetRe = regexp.MustCompile(`^UTC([+-])(\d{1,2})(?::(\d{2}))?$`)

// loadLocation resolves an IANA name or a fixed "UTC±H[:MM]" offset.
func loadLocation(name string) *time.Location {
	if m := utcOffsetRe.FindStringSubmatch(name); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes := 0
		if m[3] != "" {
			minutes, _ = strconv.Atoi(m[3])
		}
		offset := hours*3600 + minutes*60
		if m[1] == "-" {
			offset = -offset
		}
		return time.FixedZone(name, offset)
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return nil
}

// wallTime renders the current time in the given zone, or a placeholder
// when the zone cannot be resolved on this host.
func (a *App) wallTime(timezone string) string {
	loc := loadLocation(timezone)
	if loc == nil {
		return "--:--"
	}
	return a.now().In(loc).Format("15:04")
}
