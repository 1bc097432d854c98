package payments

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/payments-processor/pkg/pointer"
	"github.com/code-payments/payments-processor/pkg/solana"
	"github.com/code-payments/payments-processor/pkg/solana/payments/memory"
)

type testEnv struct {
	ctx       context.Context
	conf      *Config
	clock     *clockwork.FakeClock
	tokens    *memory.TokenLedger
	system    *memory.SystemLedger
	processor *Processor
	authority ed25519.PublicKey

	// Persistent account handles, keyed by address, so records survive
	// across invocations the way committed writes would.
	infos map[string]*AccountInfo
}

func newTestEnv(t *testing.T) *testEnv {
	conf := DefaultConfig()
	clock := clockwork.NewFakeClockAt(time.Unix(1700000000, 0))
	tokens := memory.NewTokenLedger()
	system := memory.NewSystemLedger()

	authority, _, err := GetAuthorityAddress(conf.ProgramID)
	require.NoError(t, err)

	return &testEnv{
		ctx:       context.Background(),
		conf:      conf,
		clock:     clock,
		tokens:    tokens,
		system:    system,
		processor: NewProcessor(conf, tokens, system, WithClock(clock)),
		authority: authority,
		infos:     make(map[string]*AccountInfo),
	}
}

func (env *testEnv) account(key ed25519.PublicKey) *AccountInfo {
	encoded := base58.Encode(key)
	if info, ok := env.infos[encoded]; ok {
		return info
	}

	info := &AccountInfo{Key: key}
	env.infos[encoded] = info
	return info
}

// process resolves an instruction's account metas against the persistent
// handles and executes it.
func (env *testEnv) process(instruction solana.Instruction) error {
	accounts := make([]*AccountInfo, len(instruction.Accounts))
	for i, meta := range instruction.Accounts {
		info := env.account(meta.PublicKey)
		info.IsSigner = meta.IsSigner
		info.IsWritable = meta.IsWritable
		accounts[i] = info
	}
	return env.processor.Process(env.ctx, instruction.Data, accounts)
}

func (env *testEnv) merchantRecord(t *testing.T, address ed25519.PublicKey) *MerchantAccount {
	var record MerchantAccount
	require.NoError(t, record.Unmarshal(env.account(address).Data))
	return &record
}

func (env *testEnv) orderRecord(t *testing.T, address ed25519.PublicKey) *OrderAccount {
	var record OrderAccount
	require.NoError(t, record.Unmarshal(env.account(address).Data))
	return &record
}

func (env *testEnv) subscriptionRecord(t *testing.T, address ed25519.PublicKey) *SubscriptionAccount {
	var record SubscriptionAccount
	require.NoError(t, record.Unmarshal(env.account(address).Data))
	return &record
}

type testMerchant struct {
	owner   ed25519.PublicKey
	address ed25519.PublicKey
}

func (env *testEnv) registerMerchant(t *testing.T, seed string, fee *uint64, sponsor ed25519.PublicKey, data *string) *testMerchant {
	owner := generateKeys(t, 1)[0]
	env.system.Fund(owner, 10_000_000)

	address, err := GetMerchantAddress(owner, seed, env.conf.ProgramID)
	require.NoError(t, err)

	var seedArg *string
	if len(seed) > 0 {
		seedArg = pointer.String(seed)
	}

	instruction := NewRegisterMerchantInstruction(&RegisterMerchantInstructionAccounts{
		Owner:    owner,
		Merchant: address,
		Sponsor:  sponsor,
	}, &RegisterMerchantInstructionArgs{
		Seed: seedArg,
		Fee:  fee,
		Data: data,
	})
	require.NoError(t, env.process(instruction))

	return &testMerchant{owner: owner, address: address}
}

type testCheckout struct {
	payer      ed25519.PublicKey
	order      ed25519.PublicKey
	escrow     ed25519.PublicKey
	buyerToken ed25519.PublicKey
	mint       ed25519.PublicKey
}

func (env *testEnv) setupCheckout(t *testing.T, payer, order ed25519.PublicKey, buyerBalance uint64) *testCheckout {
	keys := generateKeys(t, 2)
	checkout := &testCheckout{
		payer:      payer,
		order:      order,
		buyerToken: keys[0],
		mint:       keys[1],
	}

	env.system.Fund(checkout.payer, 10_000_000)

	escrow, _, err := GetEscrowAddress(order, env.conf.TokenProgram, checkout.mint, env.conf.ProgramID)
	require.NoError(t, err)
	checkout.escrow = escrow

	require.NoError(t, env.tokens.CreateAccount(checkout.buyerToken, checkout.payer, buyerBalance))
	require.NoError(t, env.tokens.CreateAccount(checkout.escrow, env.authority, 0))

	return checkout
}

func (env *testEnv) expressCheckout(t *testing.T, merchant *testMerchant, amount uint64, orderID, secret string, data *string) (*testCheckout, error) {
	payer := generateKeys(t, 1)[0]

	order, err := GetOrderAddress(payer, orderID, env.conf.ProgramID)
	require.NoError(t, err)

	checkout := env.setupCheckout(t, payer, order, 10*amount+1)

	record := env.merchantRecord(t, merchant.address)
	instruction := NewExpressCheckoutInstruction(&ExpressCheckoutInstructionAccounts{
		Payer:        checkout.payer,
		Order:        checkout.order,
		Merchant:     merchant.address,
		Escrow:       checkout.escrow,
		BuyerToken:   checkout.buyerToken,
		Mint:         checkout.mint,
		ProgramOwner: env.conf.ProgramOwner,
		Sponsor:      record.Sponsor,
	}, &ExpressCheckoutInstructionArgs{
		Amount:  amount,
		OrderID: orderID,
		Secret:  secret,
		Data:    data,
	})
	return checkout, env.process(instruction)
}
