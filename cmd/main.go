package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Youngzheimer/subtrans/internal/apperr"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if apperr.KindOf(err) != apperr.KindUnknown {
			fmt.Fprintln(os.Stderr, "Hint:", apperr.Advice(err))
		}
		os.Exit(1)
	}
}
