/*
 * januskey: provably reversible file operations
 * Copyright © 2026 The Januskey Authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitJSONOutputWritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	Logger.Info().Str("path", "/a/b.txt").Msg("created")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "created", decoded["message"])
	require.Equal(t, "/a/b.txt", decoded["path"])
}

func TestWithComponentTagsComponentField(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: DebugLevel, JSONOutput: true, Output: &buf})

	l := WithComponent("executor")
	l.Info().Msg("running")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "executor", decoded["component"])
}

func TestWithOperationTagsOperationID(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: DebugLevel, JSONOutput: true, Output: &buf})

	l := WithOperation("op-123")
	l.Info().Msg("undone")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "op-123", decoded["operation_id"])
}

func TestInitWarnLevelSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: WarnLevel, JSONOutput: true, Output: &buf})

	Logger.Info().Msg("should be suppressed")
	require.Empty(t, buf.Bytes())

	Logger.Warn().Msg("should appear")
	require.NotEmpty(t, buf.Bytes())
}
