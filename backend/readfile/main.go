// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// readfile dumps the decrypted contents of the server's data files as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ttbt-io/sitesmanager-ui/backend"
)

var (
	dataDir = flag.String("data-dir", "data", "Directory for site data")
)

func main() {
	flag.Parse()
	store, err := backend.OpenStorage(*dataDir)
	if err != nil {
		log.Fatalf("OpenStorage: %v", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"sites.json", "global_settings.json"}
	}
	for _, arg := range args {
		arg = strings.TrimPrefix(filepath.Clean(arg), filepath.Clean(*dataDir)+string(filepath.Separator))
		var obj any
		if strings.Contains(arg, "global_settings") {
			obj = new(backend.GlobalSettings)
		} else {
			obj = new(map[string]any)
		}
		if err := store.ReadDataFile(arg, obj); err != nil {
			log.Printf("%s: %v", arg, err)
			continue
		}
		fmt.Printf("=========== %s ===========\n", arg)
		if err := enc.Encode(obj); err != nil {
			log.Printf("JSON: %s: %v", arg, err)
		}
	}
}
