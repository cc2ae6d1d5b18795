package internal

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// Version is the csvtrans release version
const Version = "0.3.0"

// GenerateRunID creates an identifier for one translation run based on the
// current time and the input file path.
// Format: epochMillis_md5(inputPath)[:8]
func GenerateRunID(inputPath string) string {
	epochMillis := time.Now().UnixNano() / 1000000

	hash := md5.Sum([]byte(inputPath))
	hashStr := hex.EncodeToString(hash[:])[:8]

	return fmt.Sprintf("%d_%s", epochMillis, hashStr)
}
