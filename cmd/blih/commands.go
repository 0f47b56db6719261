package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/vitalvas/blih/client"
	"github.com/vitalvas/blih/config"
	"github.com/vitalvas/blih/credential"
	"github.com/vitalvas/blih/envelope"
)

// CLI is the command line grammar.
type CLI struct {
	User    string `short:"u" help:"The user."`
	Token   string `short:"t" help:"Specify the token on the command line."`
	Verbose int    `short:"v" type:"counter" help:"Increase the verbosity level."`
	Config  string `help:"Configuration file (.yaml, .yml or .toml)." type:"path"`
	URL     string `name:"url" help:"Service origin."`

	Repository struct {
		Create RepositoryCreateCmd `cmd:"" help:"Create a repository."`
		Delete RepositoryDeleteCmd `cmd:"" help:"Delete a repository."`
		Info   RepositoryInfoCmd   `cmd:"" help:"Get information about a repository."`
		List   RepositoryListCmd   `cmd:"" help:"Get the list of your repositories."`
		GetACL RepositoryGetACLCmd `cmd:"" name:"getacl" help:"Get repository acls."`
		SetACL RepositorySetACLCmd `cmd:"" name:"setacl" help:"Set repository acls."`
	} `cmd:"" help:"Manage your repositories."`

	SSHKey struct {
		Upload SSHKeyUploadCmd `cmd:"" help:"Upload a new sshkey."`
		List   SSHKeyListCmd   `cmd:"" help:"List your sshkey(s)."`
		Delete SSHKeyDeleteCmd `cmd:"" help:"Delete a sshkey."`
	} `cmd:"" name:"sshkey" help:"Manage your sshkeys."`
}

// app is the state every command runs with.
type app struct {
	ctx       context.Context
	cfg       *config.Config
	verbosity int
	out       io.Writer
	log       zerolog.Logger
	resolver  *credential.Resolver
}

// do resolves the credentials, at most prompting once, then sends op.
func (a *app) do(op client.Operation) (*client.Response, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}

	signer, err := a.resolver.Signer(a.ctx, credential.Credentials{
		User:  a.cfg.User,
		Token: envelope.Token(a.cfg.Token),
	})
	if err != nil {
		return nil, err
	}

	c, err := client.New(client.Config{
		Signer:    signer,
		BaseURL:   a.cfg.URL,
		UserAgent: a.cfg.UserAgent,
		Timeout:   a.cfg.Timeout,
		Proxy:     a.cfg.Proxy,
		Logger:    &a.log,
	})
	if err != nil {
		return nil, err
	}

	return c.Do(a.ctx, op)
}

type RepositoryCreateCmd struct {
	Name string `arg:"" help:"The repository name."`
}

func (c *RepositoryCreateCmd) Run(a *app) error {
	resp, err := a.do(client.CreateRepository{Name: c.Name})
	if err != nil {
		return err
	}

	printMessage(a.out, resp)

	return nil
}

type RepositoryDeleteCmd struct {
	Name string `arg:"" help:"The repository name."`
}

func (c *RepositoryDeleteCmd) Run(a *app) error {
	resp, err := a.do(client.DeleteRepository{Name: c.Name})
	if err != nil {
		return err
	}

	printMessage(a.out, resp)

	return nil
}

type RepositoryInfoCmd struct {
	Name string `arg:"" help:"The repository name."`
}

func (c *RepositoryInfoCmd) Run(a *app) error {
	resp, err := a.do(client.RepositoryInfo{Name: c.Name})
	if err != nil {
		return err
	}

	info, err := resp.Object("message")
	if err != nil {
		return err
	}

	printEntries(a.out, client.Entries(info))

	return nil
}

type RepositoryListCmd struct{}

func (c *RepositoryListCmd) Run(a *app) error {
	resp, err := a.do(client.ListRepositories{})
	if err != nil {
		return err
	}

	names, err := resp.Repositories()
	if err != nil {
		return err
	}

	printLines(a.out, names)

	return nil
}

type RepositoryGetACLCmd struct {
	Name string `arg:"" help:"The repository name."`
}

func (c *RepositoryGetACLCmd) Run(a *app) error {
	resp, err := a.do(client.GetACL{Name: c.Name})
	if err != nil {
		return err
	}

	printEntries(a.out, resp.Entries())

	return nil
}

type RepositorySetACLCmd struct {
	Name string `arg:"" help:"The repository name."`
	User string `arg:"" name:"user_acl" help:"The user to apply acls to."`
	ACL  string `arg:"" name:"acl" help:"The acl (r, w, rw, or empty to revoke)."`
}

func (c *RepositorySetACLCmd) Run(a *app) error {
	resp, err := a.do(client.SetACL{Name: c.Name, User: c.User, ACL: c.ACL})
	if err != nil {
		return err
	}

	printMessage(a.out, resp)

	return nil
}

type SSHKeyUploadCmd struct {
	Keyfile string `arg:"" optional:"" help:"The sshkey file to upload (defaults to ~/.ssh/id_rsa.pub)."`
}

func (c *SSHKeyUploadCmd) Run(a *app) error {
	path := c.Keyfile
	if path == "" {
		path = a.cfg.SSHKey
	}

	if path == "" {
		path = client.DefaultSSHKeyPath()
	}

	// The key file is read before any passphrase prompt.
	key, err := client.LoadSSHKey(path)
	if err != nil {
		return err
	}

	a.log.Info().Str("path", path).Msg("uploading key")

	resp, err := a.do(client.UploadSSHKey{Key: key})
	if err != nil {
		return err
	}

	printMessage(a.out, resp)

	return nil
}

type SSHKeyListCmd struct{}

func (c *SSHKeyListCmd) Run(a *app) error {
	resp, err := a.do(client.ListSSHKeys{})
	if err != nil {
		return err
	}

	printKeys(a.out, resp.Entries(), a.verbosity >= 2)

	return nil
}

type SSHKeyDeleteCmd struct {
	Comment string `arg:"" help:"The comment of the sshkey to delete."`
}

func (c *SSHKeyDeleteCmd) Run(a *app) error {
	resp, err := a.do(client.DeleteSSHKey{Comment: c.Comment})
	if err != nil {
		return err
	}

	printMessage(a.out, resp)

	return nil
}
