package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"ad_space_id",
			"advertiser_name",
			"advertiser_email",
			"start_date",
			"end_date",
			"status",
			"total_cost",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"ad_space_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"ad_space_name": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"advertiser_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"advertiser_email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"start_date": bson.M{
				"bsonType": "date",
			},

			"end_date": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"PENDING",
					"APPROVED",
					"REJECTED",
				},
			},

			"total_cost": bson.M{
				"bsonType": "decimal",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
