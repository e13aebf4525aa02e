// Package vault wires the key manager, cipher, repositories, policy engine
// and authentication gate into the single surface used by the interactive
// front end.
//
// Credential operations require an authenticated session: pass the token
// returned by CheckLogin or VerifyReset through auth.WithToken.
package vault

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/passkeeper/internal/auth"
	"github.com/dmitrijs2005/passkeeper/internal/config"
	"github.com/dmitrijs2005/passkeeper/internal/cryptox"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/filex"
	"github.com/dmitrijs2005/passkeeper/internal/flow"
	"github.com/dmitrijs2005/passkeeper/internal/keys"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/models"
	"github.com/dmitrijs2005/passkeeper/internal/notify"
	"github.com/dmitrijs2005/passkeeper/internal/policy"
	"github.com/dmitrijs2005/passkeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/passkeeper/internal/services"
)

type Vault struct {
	db     *sql.DB
	key    keys.Material
	gate   *auth.Gate
	creds  *services.CredentialService
	master *services.MasterService
	gen    *policy.Generator
	log    logging.Logger
}

// Open prepares a vault from configuration: it opens and migrates the
// database, loads or creates the key, and seeds the default master password
// on first use.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger, notifier auth.Notifier) (*Vault, error) {
	if cfg.DB.Driver == dbx.DriverSQLite || cfg.Key.Store == config.KeyStoreFile {
		if _, err := filex.EnsurePrivateDir(cfg.DataDir); err != nil {
			return nil, fmt.Errorf("prepare data dir: %w", err)
		}
	}

	alg, err := cryptox.ParseAlgorithm(cfg.Cipher)
	if err != nil {
		return nil, err
	}
	cipher, err := cryptox.NewCipher(alg)
	if err != nil {
		return nil, err
	}

	store, err := newKeyStore(ctx, cfg.Key)
	if err != nil {
		return nil, err
	}
	key, err := keys.NewManager(store, log).EnsureKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("ensure key: %w", err)
	}

	db, err := dbx.Open(ctx, cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		key.Zero()
		return nil, err
	}

	v, err := build(ctx, db, key, cipher, cfg.DB.Driver, cfg.Auth.Gate(), log, notifier)
	if err != nil {
		_ = db.Close()
		key.Zero()
		return nil, err
	}

	log.Info(ctx, "vault opened",
		"driver", cfg.DB.Driver,
		"key", store.Location(),
		"cipher", cipher.Algorithm().String())
	return v, nil
}

func build(ctx context.Context, db *sql.DB, key keys.Material, cipher services.Cipher, driver string,
	authCfg auth.Config, log logging.Logger, notifier auth.Notifier) (*Vault, error) {
	rm, err := repomanager.New(driver)
	if err != nil {
		return nil, err
	}
	repomanager.SetLogger(log)
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	master := services.NewMasterService(db, rm, cipher, key, log)
	if _, err := master.EnsureDefault(ctx); err != nil {
		return nil, err
	}
	// the master record doubles as a key check
	if _, err := master.Get(ctx); err != nil {
		return nil, fmt.Errorf("vault key does not open this database: %w", err)
	}

	gate, err := auth.NewGate(master, notifier, authCfg, log)
	if err != nil {
		return nil, err
	}

	return &Vault{
		db:     db,
		key:    key,
		gate:   gate,
		creds:  services.NewCredentialService(db, rm, cipher, key, log),
		master: master,
		gen:    policy.NewGenerator(policy.WithLogger(log)),
		log:    log,
	}, nil
}

func newKeyStore(ctx context.Context, c config.KeyConfig) (keys.Store, error) {
	switch c.Store {
	case config.KeyStoreFile:
		return keys.NewFileStore(c.File), nil
	case config.KeyStoreS3:
		client, err := keys.NewS3Client(ctx, keys.S3Options{
			Region:    c.S3.Region,
			Endpoint:  c.S3.Endpoint,
			AccessKey: c.S3.AccessKey,
			SecretKey: c.S3.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return keys.NewS3Store(client, c.S3.Bucket, c.S3.Object), nil
	}
	return nil, fmt.Errorf("unsupported key store %q", c.Store)
}

// NewNotifier builds the code sender for the configured transport. The log
// transport writes codes to out.
func NewNotifier(c config.NotifyConfig, log logging.Logger, out io.Writer) (*notify.CodeSender, error) {
	var t notify.Transport
	switch c.Transport {
	case config.TransportLog:
		t = notify.NewLogTransport(out)
	case config.TransportSMTP:
		t = notify.NewSMTPTransport(notify.SMTPConfig{
			Host:     c.SMTP.Host,
			Port:     c.SMTP.Port,
			Username: c.SMTP.Username,
			Password: c.SMTP.Password,
			From:     c.SMTP.From,
		})
	default:
		return nil, fmt.Errorf("unsupported notify transport %q", c.Transport)
	}
	return notify.NewCodeSender(t, log), nil
}

// Close terminates the session, wipes the key from memory and closes the
// database.
func (v *Vault) Close() error {
	v.gate.Exit()
	v.key.Zero()
	return v.db.Close()
}

func (v *Vault) State() auth.State { return v.gate.State() }

func (v *Vault) CheckLogin(ctx context.Context, password string) (string, error) {
	return v.gate.CheckLogin(ctx, password)
}

func (v *Vault) RequestReset(ctx context.Context, destination string) (string, error) {
	return v.gate.RequestReset(ctx, destination)
}

func (v *Vault) VerifyReset(ctx context.Context, challengeID, code, newPassword string) (string, error) {
	return v.gate.VerifyReset(ctx, challengeID, code, newPassword)
}

func (v *Vault) DeclineReset() error { return v.gate.DeclineReset() }

func (v *Vault) ChangeMaster(ctx context.Context, current, next string) error {
	if err := v.gate.Authorize(ctx); err != nil {
		return err
	}
	return v.gate.ChangeMaster(ctx, current, next)
}

func (v *Vault) Logout() error { return v.gate.Logout() }

func (v *Vault) Exit() { v.gate.Exit() }

func (v *Vault) AddCredential(ctx context.Context, website, username, password string) (int64, error) {
	if err := v.gate.Authorize(ctx); err != nil {
		return 0, err
	}
	return v.creds.Add(ctx, website, username, password)
}

func (v *Vault) ListCredentials(ctx context.Context) ([]models.PlainCredential, error) {
	if err := v.gate.Authorize(ctx); err != nil {
		return nil, err
	}
	return v.creds.List(ctx)
}

func (v *Vault) GetCredential(ctx context.Context, id int64) (*models.PlainCredential, error) {
	if err := v.gate.Authorize(ctx); err != nil {
		return nil, err
	}
	return v.creds.GetByID(ctx, id)
}

func (v *Vault) UpdateCredential(ctx context.Context, id int64, upd models.CredentialUpdate) error {
	if err := v.gate.Authorize(ctx); err != nil {
		return err
	}
	return v.creds.Update(ctx, id, upd)
}

func (v *Vault) DeleteCredential(ctx context.Context, id int64) error {
	if err := v.gate.Authorize(ctx); err != nil {
		return err
	}
	return v.creds.Delete(ctx, id)
}

// EvaluateStrength needs no session.
func (v *Vault) EvaluateStrength(password, identity string) policy.Evaluation {
	return policy.Evaluate(password, identity)
}

func (v *Vault) GeneratePassword(ctx context.Context, identity string) (policy.Generated, error) {
	return v.gen.Generate(ctx, identity)
}

// NewPasswordFlow starts choosing a password for identity.
func (v *Vault) NewPasswordFlow(identity string) *flow.PasswordFlow {
	return flow.New(identity, v.gen)
}
