package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/partials/internal/config"
)

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Overall   bool             `json:"overall"`
}

// Check represents an individual health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Healthy bool   `json:"healthy"`
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of a running preview server",
	Long: `Performs health checks on a running preview server:
- HTTP server responsiveness
- Components folder access

Host and port default to the server section of the configuration.

Examples:
  partials health              # Check the configured server
  partials health -p 3000      # Check another port
  partials health --verbose    # JSON report`,
	Args: cobra.NoArgs,
	RunE: runHealthCheck,
}

var (
	healthTimeout time.Duration
	healthVerbose bool
)

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().IntP("port", "p", 8080, "Port of the preview server")
	healthCmd.Flags().String("host", "localhost", "Host of the preview server")
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 3*time.Second, "Timeout for health checks")
	healthCmd.Flags().BoolVarP(&healthVerbose, "verbose", "v", false, "Verbose health check output")
	AddFlagValidation(healthCmd, "port", ValidatePort)
}

func (s *HealthStatus) record(name string, err error, okMessage string) {
	if err != nil {
		s.Checks[name] = Check{Status: "unhealthy", Message: err.Error()}
		s.Overall = false
		s.Status = "unhealthy"
		return
	}
	s.Checks[name] = Check{Status: "healthy", Message: okMessage, Healthy: true}
}

func runHealthCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}

	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]Check),
		Overall:   true,
	}

	components, err := checkHTTPServer(cfg)
	status.record("http_server", err, fmt.Sprintf("serving %d components", components))
	status.record("components_folder", checkComponentsFolder(cfg), cfg.Components.Folder)

	out := cmd.OutOrStdout()
	if healthVerbose {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(status); err != nil {
			return err
		}
	} else if status.Overall {
		fmt.Fprintln(out, "✅ All health checks passed")
	} else {
		fmt.Fprintln(out, "❌ Health checks failed")
		names := make([]string, 0, len(status.Checks))
		for name := range status.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if check := status.Checks[name]; !check.Healthy {
				fmt.Fprintf(out, "  - %s: %s\n", name, check.Message)
			}
		}
	}

	if !status.Overall {
		return errors.New("health checks failed")
	}
	return nil
}

// checkHTTPServer queries the server's /health endpoint and returns the
// number of components it reports.
func checkHTTPServer(cfg *config.Config) (int, error) {
	client := &http.Client{Timeout: healthTimeout}

	resp, err := client.Get("http://" + cfg.Address() + "/health")
	if err != nil {
		return 0, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var payload struct {
		Status     string `json:"status"`
		Components int    `json:"components"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("invalid health response: %w", err)
	}
	if payload.Status != "healthy" {
		return payload.Components, fmt.Errorf("server reports %q", payload.Status)
	}
	return payload.Components, nil
}

func checkComponentsFolder(cfg *config.Config) error {
	info, err := os.Stat(cfg.Components.Folder)
	if err != nil {
		return fmt.Errorf("cannot access components folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", cfg.Components.Folder)
	}
	if _, err := os.ReadDir(cfg.Components.Folder); err != nil {
		return fmt.Errorf("cannot read components folder: %w", err)
	}
	return nil
}
