package node

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/spacemeshos/go-agewitness/witness"
)

// AccountFile describes a payment account owned by this node.
//
//	method = "SEPA"
//	salt = "0a1b..."
//
//	[fields]
//	iban = "DE00..."
//	bic = "ABCDEFGH"
type AccountFile struct {
	witness.FieldsAccount `mapstructure:",squash"`
	Salt                  string `mapstructure:"salt"`
}

// LoadAccountFile reads an account file in any format supported by viper.
// Field names are lowercased.
func LoadAccountFile(fs afero.Fs, path string) (fields, salt []byte, err error) {
	vip := viper.New()
	vip.SetFs(fs)
	vip.SetConfigFile(path)
	if err := vip.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read account file %s: %w", path, err)
	}
	var account AccountFile
	if err := vip.Unmarshal(&account); err != nil {
		return nil, nil, fmt.Errorf("decode account file %s: %w", path, err)
	}
	if account.Method == "" {
		return nil, nil, fmt.Errorf("account file %s: %w", path, errors.New("method is empty"))
	}
	salt, err = hex.DecodeString(account.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("account file %s: decode salt: %w", path, err)
	}
	fields = account.AgeWitnessInputBytes()
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("account file %s: %w", path, witness.ErrEmptyAccountFields)
	}
	if len(salt) == 0 {
		return nil, nil, fmt.Errorf("account file %s: %w", path, witness.ErrEmptySalt)
	}
	return fields, salt, nil
}
