package probe

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kashguard/go-wallet-connect/internal/config"
)

func newLiveness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Checks whether the server process is alive",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool(verboseFlag)
			runProbe("/-/healthy", verbose)
		},
	}
	cmd.Flags().BoolP(verboseFlag, "v", false, "Prints the probe response body")
	return cmd
}

// runProbe 访问本地内部端点，非 200 即以非零码退出。
// 供容器运行时的 liveness/readiness 探针调用。
func runProbe(path string, verbose bool) {
	cfg := config.DefaultServiceConfigFromEnv()
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get("http://localhost" + cfg.Echo.ListenAddress + path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if verbose {
		fmt.Printf("GET %s: %s\n", path, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
