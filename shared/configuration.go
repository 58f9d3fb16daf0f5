package shared

import (
	"fmt"

	"encoding/json"
	"io/ioutil"

	"github.com/kelseyhightower/envconfig"
)

const CONFIG_PREFIX = "MAD"

type AppConfig struct {
	PgUsername             string `split_words:"true" default:"postgres"`
	PgPassword             string `split_words:"true" default:"postgres"`
	PgContactPoint         string `split_words:"true" default:"127.0.0.1"`
	PgContactPort          string `split_words:"true" default:"5432"`
	PgDbName               string `split_words:"true" default:"madgenealogy"`
	SqlMigrationsSourceDir string `split_words:"true" default:"sql"`
	LocalStoragePath       string `split_words:"true"`

	BucketAvatarsName           string `split_words:"true" default:"madgenealogy-avatars"`
	BucketServiceAccount        string `split_words:"true"`
	BucketServiceAccountDetails ServiceAccountDetails

	JwtSecret        string `split_words:"true" default:"change-me"`
	JwtValidityHours int    `split_words:"true" default:"6"`

	SesRegion        string `split_words:"true" default:"eu-west-1"`
	SesSenderAddress string `split_words:"true"`
	AppBaseUrl       string `split_words:"true" default:"http://localhost:8083"`

	ListenAddress    string `split_words:"true" default:"0.0.0.0:8083"`
	StartupMigration bool   `split_words:"true" default:"false"`
}

func InitAppConfiguration() (config *AppConfig, err error) {
	config = &AppConfig{}

	if err := envconfig.Process(CONFIG_PREFIX, config); err != nil {
		return nil, fmt.Errorf("failed to parse env vars: %v", err)
	}

	if config.BucketServiceAccount != "" {
		b, err := ioutil.ReadFile(config.BucketServiceAccount)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal(b, &config.BucketServiceAccountDetails); err != nil {
			return nil, err
		}
	}

	return
}

type ServiceAccountDetails struct {
	Type                    string `json:"type"`
	ProjectId               string `json:"project_id"`
	PrivateKeyId            string `json:"private_key_id"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientId                string `json:"client_id"`
	AuthUri                 string `json:"auth_uri"`
	TokenUri                string `json:"token_uri"`
	AuthProviderX509CertUrl string `json:"auth_provider_x509_cert_url"`
	ClientX509CertUrl       string `json:"client_x509_cert_url"`
}
