package payments

import (
	"context"
	"crypto/ed25519"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// TokenLedger is the token-transfer capability the host provides. Transfer
// fails when the source balance is insufficient or the authority is not
// valid for the source account.
type TokenLedger interface {
	Transfer(ctx context.Context, from, to, authority ed25519.PublicKey, amount uint64) error
	Balance(ctx context.Context, account ed25519.PublicKey) (uint64, error)
}

// SystemLedger is the account-funding capability: persistent storage
// allocation for new records and native-unit transfers for fee settlement.
type SystemLedger interface {
	CreateAccount(ctx context.Context, payer, newAccount ed25519.PublicKey, size uint64, owner ed25519.PublicKey) error
	Transfer(ctx context.Context, from, to ed25519.PublicKey, amount uint64) error
}

type ProcessorOption func(*Processor)

// WithClock overrides the wall clock, primarily for tests.
func WithClock(clock clockwork.Clock) ProcessorOption {
	return func(p *Processor) {
		p.clock = clock
	}
}

// Processor executes payment program instructions against caller-supplied
// account lists. Each invocation runs to completion with no internal
// suspension; the host applies all record writes and transfers atomically,
// so every validation must happen before the first side effect.
type Processor struct {
	log    *logrus.Entry
	conf   *Config
	tokens TokenLedger
	system SystemLedger
	clock  clockwork.Clock
}

func NewProcessor(conf *Config, tokens TokenLedger, system SystemLedger, opts ...ProcessorOption) *Processor {
	p := &Processor{
		log:    logrus.StandardLogger().WithField("processor", "payments"),
		conf:   conf,
		tokens: tokens,
		system: system,
		clock:  clockwork.NewRealClock(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process decodes one raw instruction, validates the accompanying account
// list, and dispatches to the operation's engine. Any returned error is
// terminal for the invocation and no effects survive it.
func (p *Processor) Process(ctx context.Context, instructionData []byte, accounts []*AccountInfo) error {
	cmd, err := DecodeCommand(instructionData)
	if err != nil {
		return err
	}

	if err := validateAccounts(cmd.Opcode, accounts, p.conf.ProgramID); err != nil {
		return err
	}

	log := p.log.WithField("instruction", cmd.Opcode.String())

	switch cmd.Opcode {
	case OpcodeRegisterMerchant:
		err = p.registerMerchant(ctx, log, cmd.RegisterMerchant, accounts)
	case OpcodeExpressCheckout:
		err = p.expressCheckout(ctx, log, cmd.ExpressCheckout, accounts)
	case OpcodeChainCheckout:
		err = p.chainCheckout(ctx, log, cmd.ChainCheckout, accounts)
	case OpcodeWithdraw:
		err = p.withdraw(ctx, log, accounts)
	case OpcodeSubscribe:
		err = p.subscribe(ctx, log, cmd.Subscribe, accounts)
	case OpcodeRenewSubscription:
		err = p.renewSubscription(ctx, log, cmd.RenewSubscription, accounts)
	case OpcodeCancelSubscription:
		err = p.cancelSubscription(ctx, log, accounts)
	default:
		err = ErrMalformedInstruction
	}

	if err != nil {
		log.WithError(err).Debug("instruction rejected")
	}
	return err
}
