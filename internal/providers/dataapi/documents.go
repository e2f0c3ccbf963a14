package dataapi

const nftByTokenIDDocument = `
query GetNFTByTokenId($tokenId: String!) {
  nfts(tokenId: $tokenId, first: 1) {
    id
    tokenId
    owner
    creator
    price
    currency
    isListed
  }
}`

const createNFTDocument = `
mutation CreateNFT(
  $tokenId: String!
  $name: String!
  $description: String
  $image: String!
  $owner: String!
  $creator: String!
  $metadata: JSONObject
) {
  createNFT(
    tokenId: $tokenId
    name: $name
    description: $description
    image: $image
    owner: $owner
    creator: $creator
    metadata: $metadata
  ) {
    id
    tokenId
    owner
    creator
    price
    currency
    isListed
  }
}`

const updateNFTDocument = `
mutation UpdateNFT($id: ID!, $owner: String, $price: Float, $isListed: Boolean) {
  updateNFT(id: $id, owner: $owner, price: $price, isListed: $isListed) {
    id
    tokenId
    owner
    price
    isListed
  }
}`

const recordTransactionDocument = `
mutation RecordTransaction(
  $nftId: ID!
  $from: String!
  $to: String!
  $price: Float
  $currency: String
  $transactionType: TransactionType!
  $transactionHash: String!
) {
  recordTransaction(
    nftId: $nftId
    from: $from
    to: $to
    price: $price
    currency: $currency
    transactionType: $transactionType
    transactionHash: $transactionHash
  ) {
    id
  }
}`
