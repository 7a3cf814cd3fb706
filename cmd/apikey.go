// Copyright 2024-2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"encoding/base64"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fintrackit/ft-api/common"
)

var (
	apikeyUser  string
	apikeyToken string
)

func init() {
	rootCmd.AddCommand(apikeyCmd)

	apikeyCmd.Flags().StringVar(&apikeyUser, "user", "", "User ID the key acts as")
	apikeyCmd.Flags().StringVar(&apikeyToken, "token", "", "Backend bearer token embedded in the key")
	apikeyCmd.MarkFlagRequired("user")
	apikeyCmd.MarkFlagRequired("token")
}

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Mint an encrypted API key",
	Long:  `Encrypt a user id and backend token into an API key accepted by the apikey query parameter and X-Ft-Api header.`,
	Run: func(cmd *cobra.Command, args []string) {
		payload, err := json.Marshal(map[string]string{
			"sub":   apikeyUser,
			"token": apikeyToken,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal apikey payload")
		}

		encrypted, err := common.Encrypt(payload)
		if err != nil {
			log.Fatal().Err(err).Msg("could not encrypt apikey")
		}

		fmt.Println(base64.URLEncoding.EncodeToString(encrypted))
	},
}
