package parser

import (
	"github.com/gnana997/refract/pkg/util"
)

// getDefaultPoolSize delegates to util.GetOptimalPoolSize so parser pools
// and the workspace worker pool agree; a mismatch would leave workers
// blocked waiting for parsers.
func getDefaultPoolSize() int {
	return util.GetOptimalPoolSize()
}
