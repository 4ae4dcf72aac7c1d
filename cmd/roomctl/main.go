package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sourcesync/infrastructure/rest"
	"sourcesync/observability"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config comes from ROOMCTL_* variables, flags override it.
type Config struct {
	Addr    string        `envconfig:"ADDR" default:"http://localhost:8080"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"5s"`
	Colours bool          `envconfig:"COLOURS" default:"true"`
}

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "roomctl: %v\n", err)
	}
	os.Exit(code)
}

func run(args []string, out io.Writer) (int, error) {
	var cfg Config
	if err := envconfig.Process("roomctl", &cfg); err != nil {
		return exitConfig, err
	}

	flagSet := pflag.NewFlagSet("roomctl", pflag.ContinueOnError)
	flagSet.StringVarP(&cfg.Addr, "addr", "a", cfg.Addr, "base URL of the SourceSync server")
	flagSet.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout")
	flagSet.BoolVar(&cfg.Colours, "colours", cfg.Colours, "colorize output")
	room := flagSet.StringP("room", "r", "", "only show this room")
	stats := flagSet.BoolP("stats", "s", false, "show server stats instead of rooms")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return exitOK, nil
		}
		return exitConfig, err
	}
	if !cfg.Colours {
		color.Disable()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	base := strings.TrimRight(cfg.Addr, "/")

	switch {
	case *stats:
		var s observability.MonitoringStats
		if err := getJSON(ctx, base+"/debug/stats", &s); err != nil {
			return exitRuntime, err
		}
		renderStats(out, s)
	case *room != "":
		var view rest.RoomView
		if err := getJSON(ctx, base+"/api/rooms/"+*room, &view); err != nil {
			return exitRuntime, err
		}
		renderRooms(out, []rest.RoomView{view})
	default:
		var views []rest.RoomView
		if err := getJSON(ctx, base+"/api/rooms", &views); err != nil {
			return exitRuntime, err
		}
		renderRooms(out, views)
	}
	return exitOK, nil
}

func getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func renderRooms(out io.Writer, views []rest.RoomView) {
	if len(views) == 0 {
		_, _ = fmt.Fprintln(out, color.Yellow.Sprint("no active room"))
		return
	}
	table := newTable(out, []string{"Room", "Socket", "Username", "Audio"})
	for _, v := range views {
		for _, c := range v.Clients {
			audio := color.Gray.Sprint("muted")
			if !c.IsMuted {
				audio = color.Green.Sprint("sharing")
			}
			table.Append([]string{v.ID, c.SocketID, c.Username, audio})
		}
	}
	table.Render()
}

func renderStats(out io.Writer, s observability.MonitoringStats) {
	table := newTable(out, []string{"Metric", "Value"})
	table.AppendBulk([][]string{
		{"rooms", fmt.Sprint(s.Rooms)},
		{"connections", fmt.Sprint(s.Connections)},
		{"pid", fmt.Sprint(s.PID)},
		{"status", s.Status},
		{"cpu", fmt.Sprintf("%.2f%%", s.Cpu)},
		{"rss", fmt.Sprintf("%d MB", s.RssMb)},
		{"heap", fmt.Sprintf("%d MB", s.AllocMemMb)},
		{"goroutines", fmt.Sprint(s.NumGoroutine)},
		{"delivery failures", failures(s.DeliveryFailures)},
		{"worker restarts", failures(s.WorkerRestarts)},
	})
	table.Render()

	if len(s.Queues) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out)
	queues := newTable(out, []string{"Socket", "Room", "Reliable", "Audio", "Dropped"})
	for _, q := range s.Queues {
		queues.Append([]string{
			string(q.ConnectionID),
			string(q.Room),
			fmt.Sprintf("%d/%d", q.ReliableLength, q.ReliableCap),
			fmt.Sprintf("%d/%d", q.AudioLength, q.AudioCap),
			fmt.Sprint(q.AudioDropped),
		})
	}
	queues.Render()
}

func failures(n uint64) string {
	if n == 0 {
		return "0"
	}
	return color.Red.Sprint(n)
}
