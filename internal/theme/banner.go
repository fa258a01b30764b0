package theme

import (
	"fmt"
)

// Banner returns the delaytrain terminal banner.
func Banner() string {
	const cyan = "\033[36m"
	const yellow = "\033[33m"
	const reset = "\033[0m"

	art := "" +
		cyan + "  ___ ___ ___ ___ ___\n" + reset +
		cyan + " |___|___|___|___|___|   " + reset + "DELAYTRAIN\n" +
		yellow + "  o-o       o-o   o-o    " + reset + "arrival delay model trainer\n"
	return art
}

// PrintBanner prints the banner to stdout.
func PrintBanner() {
	fmt.Print(Banner())
}
