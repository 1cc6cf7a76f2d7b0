package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jtrevag/lfg-discord-bot/config"
	"github.com/jtrevag/lfg-discord-bot/core/model"
	"github.com/jtrevag/lfg-discord-bot/core/optimizer"
	"github.com/jtrevag/lfg-discord-bot/core/render"
)

var (
	votesPath string
	podSize   int
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run the pod optimizer once on a votes file and print the announcement",
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVar(&votesPath, "votes", "", "JSON or YAML file mapping player ids to available days")
	optimizeCmd.Flags().IntVar(&podSize, "pod-size", 0, "players per pod (overrides configuration)")
	if err := optimizeCmd.MarkFlagRequired("votes"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(optimizeCmd)
}

// loadVotes reads a player availability map from a JSON or YAML file.
func loadVotes(path string) (model.Availability, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string][]string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &raw)
	case ".json":
		err = json.Unmarshal(b, &raw)
	default:
		return nil, fmt.Errorf("unsupported votes format: %s", ext)
	}
	if err != nil {
		return nil, err
	}
	avail := make(model.Availability, len(raw))
	for id, names := range raw {
		days := make([]model.Day, 0, len(names))
		for _, name := range names {
			d, ok := model.ParseDay(name)
			if !ok {
				return nil, fmt.Errorf("player %s: unknown day %q", id, name)
			}
			days = append(days, d)
		}
		avail[model.PlayerID(id)] = days
	}
	return avail, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	avail, err := loadVotes(votesPath)
	if err != nil {
		return fmt.Errorf("load votes: %w", err)
	}
	size := cfg.Poll.PodSize
	if podSize > 0 {
		size = podSize
	}
	opt := optimizer.Optimizer{
		PodSize:     size,
		Preferences: cfg.Poll.PlayerPreferences(),
	}
	res, err := opt.Optimize(avail)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.Message(res, nil))
	return nil
}
