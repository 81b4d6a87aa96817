package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"client_id",
			"professional_id",
			"appointment_start",
			"appointment_end",
			"duration_minutes",
			"consultation_type",
			"status",
			"total_amount",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"client_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"professional_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"appointment_start": bson.M{
				"bsonType": "date",
			},

			"appointment_end": bson.M{
				"bsonType": "date",
			},

			"duration_minutes": bson.M{
				"bsonType": "int",
				"minimum":  15,
				"maximum":  480,
			},

			"consultation_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"in_person",
					"virtual",
					"phone",
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"completed",
					"cancelled",
					"rescheduled",
				},
			},

			"total_amount": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"meeting_link": bson.M{
				"bsonType": "string",
			},

			"meeting_phone": bson.M{
				"bsonType": "string",
			},

			"meeting_address": bson.M{
				"bsonType":  "string",
				"maxLength": 300,
			},

			"cancelled_at": bson.M{
				"bsonType": "date",
			},

			"cancelled_by": bson.M{
				"bsonType": "string",
			},

			"cancellation_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
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
