package store

// DatabaseName is the MongoDB database holding all collections.
const DatabaseName = "food-delivery"
