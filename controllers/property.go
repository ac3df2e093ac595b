package controllers

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/dcode-github/homlet/services"
	"github.com/gorilla/mux"
)

const maxUploadMemory = 32 << 20

func AgentDashboard(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dashboard, err := d.Properties.Dashboard(r.Context(), currentIdentity(r).ID)
		if err != nil {
			d.fail(w, r, "/", err, "Error loading dashboard")
			return
		}
		render(w, r, "Agent Dashboard", dashboard)
	}
}

func UploadPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, "Upload Property", nil)
	}
}

func propertyInput(r *http.Request) services.PropertyInput {
	return services.PropertyInput{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Price:        r.FormValue("price"),
		State:        r.FormValue("state"),
		Area:         r.FormValue("area"),
		PropertyType: r.FormValue("propertyType"),
		Status:       r.FormValue("status"),
	}
}

func fileNames(files []*multipart.FileHeader) []string {
	names := make([]string, 0, len(files))
	for _, fh := range files {
		names = append(names, fh.Filename)
	}
	return names
}

// UploadProperty stores the submitted media and creates the listing. Media
// counts are checked before anything is written.
func UploadProperty(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var images, videos []*multipart.FileHeader
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			log.Printf("Invalid upload form: %v", err)
			d.fail(w, r, "/agent/upload", err, "Error uploading property")
			return
		}
		if r.MultipartForm != nil {
			images = r.MultipartForm.File["images"]
			videos = r.MultipartForm.File["video"]
		}

		if err := services.ValidateMedia(fileNames(images), fileNames(videos)); err != nil {
			d.fail(w, r, "/agent/upload", err, "Error uploading property")
			return
		}

		imageNames, err := d.Uploads.Save(images)
		if err != nil {
			d.fail(w, r, "/agent/upload", err, "Error uploading property")
			return
		}
		videoNames, err := d.Uploads.Save(videos)
		if err != nil {
			d.Uploads.Remove(imageNames)
			d.fail(w, r, "/agent/upload", err, "Error uploading property")
			return
		}

		_, err = d.Properties.Upload(r.Context(), currentIdentity(r).ID, services.UploadInput{
			PropertyInput: propertyInput(r),
			Images:        imageNames,
			Videos:        videoNames,
		})
		if err != nil {
			d.Uploads.Remove(append(imageNames, videoNames...))
			d.fail(w, r, "/agent/upload", err, "Error uploading property")
			return
		}
		succeed(w, r, "/agent/dashboard", "Property uploaded successfully!")
	}
}

func EditPropertyPage(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		property, err := d.Properties.Find(r.Context(), currentIdentity(r).ID, mux.Vars(r)["id"])
		if err != nil {
			d.fail(w, r, "/agent/dashboard", err, "Error loading property")
			return
		}
		render(w, r, "Edit Property", property)
	}
}

func UpdateProperty(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := d.Properties.Update(r.Context(), currentIdentity(r).ID, mux.Vars(r)["id"], propertyInput(r))
		if err != nil {
			d.fail(w, r, "/agent/dashboard", err, "Error updating property")
			return
		}
		succeed(w, r, "/agent/dashboard", "Property updated successfully!")
	}
}

func DeleteProperty(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Properties.Delete(r.Context(), currentIdentity(r).ID, mux.Vars(r)["id"]); err != nil {
			d.fail(w, r, "/agent/dashboard", err, "Error deleting property")
			return
		}
		succeed(w, r, "/agent/dashboard", "Property deleted successfully!")
	}
}

func RecordDeal(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := d.Properties.RecordDeal(r.Context(), currentIdentity(r).ID, services.DealInput{
			PropertyID: r.FormValue("propertyId"),
			ClientID:   r.FormValue("clientId"),
			DealValue:  r.FormValue("dealValue"),
			Notes:      r.FormValue("notes"),
		})
		if err != nil {
			d.fail(w, r, "/agent/dashboard", err, "Error recording deal")
			return
		}
		succeed(w, r, "/agent/dashboard", "Deal recorded successfully!")
	}
}
