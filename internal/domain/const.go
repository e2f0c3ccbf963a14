package domain

const (
	// Gateway constants
	DEFAULT_IPFS_GATEWAY = "https://ipfs.io/ipfs/"

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// NATIVE_CURRENCY is the currency recorded for marketplace prices
	NATIVE_CURRENCY = "ETH"

	// NATIVE_DECIMALS is the number of decimals of the native currency (wei -> ether)
	NATIVE_DECIMALS = 18

	// SYNTHETIC_HASH_PREFIX marks transaction hashes generated when none could be recovered
	SYNTHETIC_HASH_PREFIX = "auto-generated-"
)
