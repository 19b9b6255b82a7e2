package forbiddencalls

import (
	"fmt"
	"log"
	"os"

	zlog "github.com/rs/zerolog/log"
)

func main() {
	log.Fatal("allowed in main")         // No want
	zlog.Fatal().Msg("allowed in main")  // No want
	fmt.Println("allowed in main")       // No want
	os.Exit(0)                           // No want
	log.Println("still the wrong logger") // want "log.Println is forbidden, use zerolog"
}

func init() {
	panic("panic forbidden even in init") // want "panic is forbidden"
	log.Fatal("forbidden in init")        // want "log.Fatal is forbidden outside main function"
	os.Exit(1)                            // want "os.Exit is forbidden outside main function"
}
