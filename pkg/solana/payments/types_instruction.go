package payments

type Opcode uint8

const (
	OpcodeRegisterMerchant Opcode = iota
	OpcodeExpressCheckout
	OpcodeChainCheckout
	OpcodeWithdraw
	OpcodeSubscribe
	OpcodeRenewSubscription
	OpcodeCancelSubscription
)

func (o Opcode) String() string {
	switch o {
	case OpcodeRegisterMerchant:
		return "register_merchant"
	case OpcodeExpressCheckout:
		return "express_checkout"
	case OpcodeChainCheckout:
		return "chain_checkout"
	case OpcodeWithdraw:
		return "withdraw"
	case OpcodeSubscribe:
		return "subscribe"
	case OpcodeRenewSubscription:
		return "renew_subscription"
	case OpcodeCancelSubscription:
		return "cancel_subscription"
	default:
		return "unknown"
	}
}

func putOpcode(dst []byte, v Opcode, offset *int) {
	putUint8(dst, uint8(v), offset)
}

// Command is a decoded instruction. Exactly one of the args pointers is set
// for opcodes that carry a payload; Withdraw and CancelSubscription carry
// none.
type Command struct {
	Opcode Opcode

	RegisterMerchant  *RegisterMerchantInstructionArgs
	ExpressCheckout   *ExpressCheckoutInstructionArgs
	ChainCheckout     *ChainCheckoutInstructionArgs
	Subscribe         *SubscribeInstructionArgs
	RenewSubscription *RenewSubscriptionInstructionArgs
}

// DecodeCommand decodes a raw instruction payload into a typed command.
// Trailing bytes beyond the opcode's payload are rejected.
func DecodeCommand(data []byte) (*Command, error) {
	if len(data) == 0 {
		return nil, ErrMalformedInstruction
	}

	cmd := &Command{Opcode: Opcode(data[0])}
	payload := data[1:]

	switch cmd.Opcode {
	case OpcodeRegisterMerchant:
		cmd.RegisterMerchant = &RegisterMerchantInstructionArgs{}
		return cmd, cmd.RegisterMerchant.Unmarshal(payload)
	case OpcodeExpressCheckout:
		cmd.ExpressCheckout = &ExpressCheckoutInstructionArgs{}
		return cmd, cmd.ExpressCheckout.Unmarshal(payload)
	case OpcodeChainCheckout:
		cmd.ChainCheckout = &ChainCheckoutInstructionArgs{}
		return cmd, cmd.ChainCheckout.Unmarshal(payload)
	case OpcodeWithdraw, OpcodeCancelSubscription:
		if len(payload) != 0 {
			return nil, ErrMalformedInstruction
		}
		return cmd, nil
	case OpcodeSubscribe:
		cmd.Subscribe = &SubscribeInstructionArgs{}
		return cmd, cmd.Subscribe.Unmarshal(payload)
	case OpcodeRenewSubscription:
		cmd.RenewSubscription = &RenewSubscriptionInstructionArgs{}
		return cmd, cmd.RenewSubscription.Unmarshal(payload)
	default:
		return nil, ErrMalformedInstruction
	}
}
