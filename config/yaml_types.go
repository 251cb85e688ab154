package config

import (
	"strconv"
	"strings"

	"github.com/chunkfile/chunkfile/internal/chunkerr"
)

// ConfigYml is the unmarshal target for the config.yaml file.
type ConfigYml struct {
	Stream StreamYml `yaml:"stream"`
}

type StreamYml struct {
	PlainChunkSizeStr string `yaml:"plain_chunk_size"`
	KeyHex            string `yaml:"key_hex"`
}

// extractSize takes a string-formatted size, as given in the
// configuration file, and turns it into a byte count.
// size is formatted as "xx yy" where xx is an int and yy is one of
// [B, KBi, MBi, GBi].
func extractSize(size string) (uint64, error) {
	split := strings.Split(size, " ")
	if len(split) != 2 {
		return 0, chunkerr.NewKind(chunkerr.KindConfig,
			"cannot parse '"+size+"', must be of type: xx yy where xx is an int and yy is one of [B, KBi, MBi, GBi]")
	}
	var shifter uint
	switch split[1] {
	case "B":
	case "KBi":
		shifter = 10
	case "MBi":
		shifter = 20
	case "GBi":
		shifter = 30
	default:
		return 0, chunkerr.NewKind(chunkerr.KindConfig, "unknown unit ["+split[1]+"], use [B, KBi, MBi, GBi]")
	}
	quantity, err := strconv.Atoi(split[0])
	if err != nil {
		return 0, chunkerr.WrapKind(err, chunkerr.KindConfig, "parse size quantity")
	}
	return uint64(quantity) << shifter, nil
}
