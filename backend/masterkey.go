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

package backend

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/c2FmZQ/storage"
	"github.com/c2FmZQ/storage/crypto"
)

// MasterKeyEnv names the environment variable holding the passphrase of the
// data directory's master key.
const MasterKeyEnv = "SM_MASTER_KEY"

const masterKeyFile = "master.key"

// ErrUnencryptedKeyPresent is returned when a master key exists on disk but no
// passphrase was given.
var ErrUnencryptedKeyPresent = errors.New("master key exists but no passphrase is set")

// OpenMasterKey loads the master key in dataDir, creating it on first use.
// An empty passphrase returns a nil key, which means unencrypted storage.
func OpenMasterKey(dataDir, passphrase string) (crypto.MasterKey, error) {
	keyFile := filepath.Join(dataDir, masterKeyFile)
	if passphrase == "" {
		if _, err := os.Stat(keyFile); err == nil {
			return nil, fmt.Errorf("%s: %w", keyFile, ErrUnencryptedKeyPresent)
		}
		log.Printf("Warning: No %s provided. Data will be stored UNENCRYPTED.", MasterKeyEnv)
		return nil, nil
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	mk, err := crypto.ReadMasterKey([]byte(passphrase), keyFile)
	if err == nil {
		log.Println("Loaded master encryption key.")
		return mk, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read master key: %w", err)
	}
	log.Println("Initializing new master encryption key...")
	if mk, err = crypto.CreateMasterKey(); err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	if err := mk.Save([]byte(passphrase), keyFile); err != nil {
		return nil, fmt.Errorf("save master key: %w", err)
	}
	return mk, nil
}

// OpenStorage opens the compressed, optionally encrypted, data store in
// dataDir using the passphrase from SM_MASTER_KEY.
func OpenStorage(dataDir string) (*storage.Storage, error) {
	mk, err := OpenMasterKey(dataDir, os.Getenv(MasterKeyEnv))
	if err != nil {
		return nil, err
	}
	s := storage.New(dataDir, mk)
	s.EnableCompression(true)
	return s, nil
}
