package services

import (
	"github.com/dcode-github/homlet/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func parseID(hex, entity string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, models.WrapError(models.ErrInvalidInput, "Invalid "+entity+" ID", err)
	}
	return id, nil
}
