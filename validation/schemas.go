package validation

// Request body schemas (draft-07). Numeric form fields may arrive as JSON
// numbers or as strings.

const nonZeroNumber = `{
	"anyOf": [
		{"type": "number", "exclusiveMinimum": 0},
		{"type": "string", "minLength": 1, "pattern": "^\\s*[0-9]*\\.?[0-9]+\\s*$"}
	]
}`

const numericValue = `{
	"anyOf": [
		{"type": "number"},
		{"type": "string", "pattern": "^\\s*-?[0-9]*\\.?[0-9]+\\s*$"}
	]
}`

const nonEmptyString = `{"type": "string", "minLength": 1}`

var productAddSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name", "price_ksh", "quantity", "unit", "image"],
	"properties": {
		"name": ` + nonEmptyString + `,
		"price_ksh": ` + nonZeroNumber + `,
		"quantity": ` + nonZeroNumber + `,
		"unit": ` + nonEmptyString + `,
		"image": ` + nonEmptyString + `
	}
}`

var productVerifySchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": ` + nonEmptyString + `
	}
}`

var productUpdateSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"price_ksh": ` + numericValue + `,
		"quantity": ` + numericValue + `,
		"unit": {"type": "string"},
		"image": {"type": "string"}
	}
}`

var signupSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name", "phone", "email", "password"],
	"properties": {
		"name": ` + nonEmptyString + `,
		"phone": ` + nonEmptyString + `,
		"email": ` + nonEmptyString + `,
		"password": ` + nonEmptyString + `
	}
}`

var usernameLoginSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["username", "password"],
	"properties": {
		"username": ` + nonEmptyString + `,
		"password": ` + nonEmptyString + `
	}
}`

var emailLoginSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["email", "password"],
	"properties": {
		"email": ` + nonEmptyString + `,
		"password": ` + nonEmptyString + `
	}
}`

var orderPlaceSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["product", "quantity", "buyer", "phone", "address", "farmer"],
	"properties": {
		"product": ` + nonEmptyString + `,
		"quantity": ` + nonZeroNumber + `,
		"buyer": ` + nonEmptyString + `,
		"phone": ` + nonEmptyString + `,
		"address": ` + nonEmptyString + `,
		"farmer": ` + nonEmptyString + `,
		"order_date": {"type": ["string", "null"]}
	}
}`

var distributorUpdateSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "status", "distributor"],
	"properties": {
		"id": {"type": "integer", "exclusiveMinimum": 0},
		"status": ` + nonEmptyString + `,
		"distributor": ` + nonEmptyString + `
	}
}`
