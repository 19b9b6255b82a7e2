package forbiddencalls

import (
	"fmt"
	"log"
	"os"

	zlog "github.com/rs/zerolog/log"
)

func SubmitPanics() {
	panic("this is forbidden") // want "panic is forbidden"
}

func LoadConfigOrDie() {
	log.Fatal("this is forbidden")   // want "log.Fatal is forbidden outside main function"
	log.Fatalf("bad %s", "config")   // want "log.Fatalf is forbidden outside main function"
	zlog.Fatal().Msg("bad config")   // want "log.Fatal is forbidden outside main function"
}

func ExitFromWorker() {
	os.Exit(1) // want "os.Exit is forbidden outside main function"
}

func LogWithStandardLogger() {
	log.Printf("shortened %s", "x") // want "log.Printf is forbidden, use zerolog"
	log.Println("done")             // want "log.Println is forbidden, use zerolog"
}

func PrintFromHandler() {
	fmt.Println("result")             // want "fmt.Println is forbidden outside main function"
	fmt.Printf("%s\n", "result")       // want "fmt.Printf is forbidden outside main function"
	fmt.Fprintln(os.Stderr, "allowed") // writers are explicit
	_ = fmt.Sprintf("%d", 1)
}

func StructuredLogging() {
	zlog.Info().Msg("allowed")
	zlog.Error().Msg("allowed")
}

type shadow struct{}

func (shadow) main() {
	os.Exit(2) // want "os.Exit is forbidden outside main function"
}
