// main.go
//
// Health probe for the mapsdb service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jam-build-propsdb.
// jam-build-propsdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jam-build-propsdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jam-build-propsdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/localnerve/mapsdb/internal/config"
	"github.com/localnerve/mapsdb/internal/database"
	"github.com/localnerve/mapsdb/internal/logging"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/localnerve/mapsdb/internal/utils"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	result := services.HealthCheck(ctx, cfg, db)
	cancel()
	_ = database.Close(db)

	// The container probe also wants the API listener up
	if err := utils.PingServer(cfg.Port); err != nil {
		result.Status = "unhealthy"
		result.Details["server_error"] = err.Error()
		if result.ErrorMessage == "" {
			result.ErrorMessage = fmt.Sprintf("Server not accepting connections: %v", err)
		}
	}

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal health check result")
	}
	fmt.Println(string(output))

	if !result.Healthy() {
		os.Exit(1)
	}
}
