// Command dashboard runs the dashboard flows headlessly against a scoring
// API and prints the rendered regions.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sodam/backend/config"
	"github.com/sodam/backend/internal/dashboard"
	"github.com/sodam/backend/internal/domain"
	"github.com/sodam/backend/internal/infrastructure/recsapi"
	"github.com/sodam/backend/internal/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var log = logrus.WithField("prefix", "dashboard-cli")

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("dashboard", pflag.ContinueOnError)
	inputs := make(map[string]*string, len(domain.FeatureNames))
	for _, name := range domain.FeatureNames {
		inputs[name] = flags.String(strings.ReplaceAll(name, "_", "-"), "", "value of the "+name+" input")
	}
	flags.String("api", "", "scoring API base URL (default http://127.0.0.1:<server.port>)")
	flags.Duration("timeout", 0, "per-request timeout, 0 for none")
	action := flags.String("action", "score", "flow to run: score, sample or both")
	format := flags.String("format", "text", "output: text or html")
	if err := flags.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	if err := v.BindPFlag("dashboard.api_base_url", flags.Lookup("api")); err != nil {
		return err
	}
	if err := v.BindPFlag("dashboard.request_timeout", flags.Lookup("timeout")); err != nil {
		return err
	}
	cfg, err := config.LoadWith(v)
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr); err != nil {
		return err
	}

	page, err := dashboard.NewPage()
	if err != nil {
		return err
	}
	for name, val := range inputs {
		if err := page.SetValue(name, *val); err != nil {
			return err
		}
	}

	client := recsapi.NewClient(cfg.Dashboard.APIBaseURL)
	client.SetRateLimit(cfg.RateLimit.Client)
	client.SetTimeout(cfg.Dashboard.RequestTimeout)
	if cfg.Server.Environment == "development" {
		client.SetDebug(true)
	}
	ctrl := dashboard.NewController(client, page)

	ctx := context.Background()
	switch *action {
	case "score":
		err = ctrl.ClickScore(ctx)
	case "sample":
		err = ctrl.ClickSample(ctx)
	case "both":
		err = ctrl.Refresh(ctx)
	default:
		return fmt.Errorf("unknown action %q", *action)
	}
	if err != nil {
		return err
	}

	switch *format {
	case "html":
		return ctrl.Render(os.Stdout)
	case "text":
		return ctrl.View(func(p *dashboard.Page) error {
			if err := dashboard.WriteText(os.Stdout, p); err != nil {
				return err
			}
			if *action == "sample" {
				return nil
			}
			out, err := p.Text(dashboard.IDOut)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(os.Stdout, out)
			return err
		})
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}
