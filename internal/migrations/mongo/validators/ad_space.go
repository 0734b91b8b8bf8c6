package validators

import "go.mongodb.org/mongo-driver/bson"

var AdSpaceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"type",
			"city",
			"address",
			"price_per_day",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"BILLBOARD",
					"DIGITAL_SCREEN",
					"TRANSIT",
					"BUS_STOP",
					"MALL_DISPLAY",
				},
			},

			"city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 300,
			},

			"price_per_day": bson.M{
				"bsonType": "decimal",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"AVAILABLE",
					"BOOKED",
					"UNAVAILABLE",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "seq"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"seq": bson.M{
				"bsonType": "long",
			},
			"locked_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
