// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/walteh/pagemod/cmd/pagemod/commands"
	"github.com/walteh/pagemod/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		log.New(os.Stdout, zerolog.Disabled).Error(err.Error())
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 when files need review and 1 for any other failure
func exitCode(err error) int {
	if errors.Is(err, commands.ErrNeedsReview) {
		return 2
	}
	return 1
}
