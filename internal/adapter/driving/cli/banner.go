package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/diillson/aws-cur-sync/pkg/console"
	"github.com/diillson/aws-cur-sync/pkg/version"
)

const banner = `
    ___ _       _______    ________  ______     _____
   /   | |     / / ___/   / ____/ / / / __ \   / ___/__  ______  _____
  / /| | | /| / /\__ \   / /   / / / / /_/ /   \__ \/ / / / __ \/ ___/
 / ___ | |/ |/ /___/ /  / /___/ /_/ / _, _/   ___/ / /_/ / / / / /__
/_/  |_|__/|__//____/   \____/\____/_/ |_|   /____/\__, /_/ /_/\___/
                                                  /____/
`

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(w io.Writer) {
	fmt.Fprintln(w, console.BrightRed(banner))
	fmt.Fprintln(w, console.BrightCyan(fmt.Sprintf("AWS CUR to Port sync (v%s)", version.FormatVersion())))
}

// checkLatestVersion avisa quando há uma versão mais recente publicada.
func checkLatestVersion(ctx context.Context, w io.Writer, currentVersion string) {
	latest, newer := version.LatestVersion(ctx, currentVersion)
	if !newer {
		return
	}
	fmt.Fprintln(w, console.BrightYellow(fmt.Sprintf("A new version of aws-cur-sync is available: %s", latest)))
	fmt.Fprintln(w, "Please update using: go install github.com/diillson/aws-cur-sync/cmd/aws-cur-sync@latest")
}
